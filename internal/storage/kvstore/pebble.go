package kvstore

import (
	"bytes"

	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"

	"github.com/LeJamon/goTokend/internal/core/ledger/keylet"
)

// PebbleBackend stores the ledger in a Pebble database.
type PebbleBackend struct {
	db *pebble.DB
}

// NewPebbleBackend opens or creates the Pebble database at config.Path.
func NewPebbleBackend(config Config) (Backend, error) {
	db, err := pebble.Open(config.Path, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "open pebble at %s", config.Path)
	}
	return &PebbleBackend{db: db}, nil
}

func (p *PebbleBackend) Name() string { return "pebble" }

func (p *PebbleBackend) Get(key []byte) ([]byte, error) {
	if p.db == nil {
		return nil, ErrClosed
	}
	val, closer, err := p.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "pebble get")
	}
	defer closer.Close()
	return bytes.Clone(val), nil
}

func (p *PebbleBackend) Has(key []byte) (bool, error) {
	_, err := p.Get(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (p *PebbleBackend) Iterate(prefix []byte, fn func(key, value []byte) bool) error {
	if p.db == nil {
		return ErrClosed
	}
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keylet.PrefixEnd(prefix),
	})
	if err != nil {
		return errors.Wrap(err, "pebble iterator")
	}
	for valid := iter.First(); valid; valid = iter.Next() {
		if !fn(iter.Key(), iter.Value()) {
			break
		}
	}
	if err := iter.Error(); err != nil {
		iter.Close()
		return errors.Wrap(err, "pebble iterate")
	}
	return iter.Close()
}

func (p *PebbleBackend) Write(ops []Op) error {
	if p.db == nil {
		return ErrClosed
	}
	if err := validateOps(ops); err != nil {
		return err
	}
	batch := p.db.NewBatch()
	defer batch.Close()

	for _, op := range ops {
		var err error
		if op.Value == nil {
			err = batch.Delete(op.Key, nil)
		} else {
			err = batch.Set(op.Key, op.Value, nil)
		}
		if err != nil {
			return errors.Wrap(err, "pebble batch")
		}
	}
	return errors.Wrap(batch.Commit(pebble.Sync), "pebble commit")
}

func (p *PebbleBackend) Close() error {
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}
