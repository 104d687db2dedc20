package kvstore

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDBBackend stores the ledger in a goleveldb database.
type LevelDBBackend struct {
	db *leveldb.DB
}

// NewLevelDBBackend opens or creates the LevelDB database at config.Path.
func NewLevelDBBackend(config Config) (Backend, error) {
	db, err := leveldb.OpenFile(config.Path, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "open leveldb at %s", config.Path)
	}
	return &LevelDBBackend{db: db}, nil
}

func (l *LevelDBBackend) Name() string { return "leveldb" }

func (l *LevelDBBackend) Get(key []byte) ([]byte, error) {
	if l.db == nil {
		return nil, ErrClosed
	}
	val, err := l.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "leveldb get")
	}
	return val, nil
}

func (l *LevelDBBackend) Has(key []byte) (bool, error) {
	if l.db == nil {
		return false, ErrClosed
	}
	ok, err := l.db.Has(key, nil)
	return ok, errors.Wrap(err, "leveldb has")
}

func (l *LevelDBBackend) Iterate(prefix []byte, fn func(key, value []byte) bool) error {
	if l.db == nil {
		return ErrClosed
	}
	iter := l.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()
	for iter.Next() {
		if !fn(bytes.Clone(iter.Key()), bytes.Clone(iter.Value())) {
			break
		}
	}
	return errors.Wrap(iter.Error(), "leveldb iterate")
}

func (l *LevelDBBackend) Write(ops []Op) error {
	if l.db == nil {
		return ErrClosed
	}
	if err := validateOps(ops); err != nil {
		return err
	}
	batch := new(leveldb.Batch)
	for _, op := range ops {
		if op.Value == nil {
			batch.Delete(op.Key)
		} else {
			batch.Put(op.Key, op.Value)
		}
	}
	return errors.Wrap(l.db.Write(batch, &opt.WriteOptions{Sync: true}), "leveldb write")
}

func (l *LevelDBBackend) Close() error {
	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}
