package kvstore

import (
	"bytes"
	"sync"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb/comparer"
	"github.com/syndtr/goleveldb/leveldb/memdb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// MemoryBackend keeps the ledger in an ordered in-memory table. It is
// meant for tests and throwaway nodes.
type MemoryBackend struct {
	mu     sync.RWMutex
	db     *memdb.DB
	closed bool
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{db: memdb.New(comparer.DefaultComparer, 0)}
}

func (m *MemoryBackend) Name() string { return "memory" }

func (m *MemoryBackend) Get(key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	val, err := m.db.Get(key)
	if err != nil {
		return nil, ErrNotFound
	}
	return bytes.Clone(val), nil
}

func (m *MemoryBackend) Has(key []byte) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return false, ErrClosed
	}
	return m.db.Contains(key), nil
}

func (m *MemoryBackend) Iterate(prefix []byte, fn func(key, value []byte) bool) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	iter := m.db.NewIterator(util.BytesPrefix(prefix))
	defer iter.Release()
	for iter.Next() {
		if !fn(bytes.Clone(iter.Key()), bytes.Clone(iter.Value())) {
			break
		}
	}
	return iter.Error()
}

// Write applies ops in order. If one fails, the ones already applied are
// undone.
func (m *MemoryBackend) Write(ops []Op) error {
	if err := validateOps(ops); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	undo := make([]Op, 0, len(ops))
	for _, op := range ops {
		prev, err := m.db.Get(op.Key)
		switch {
		case errors.Is(err, memdb.ErrNotFound):
			prev = nil
		case err != nil:
			m.rollback(undo)
			return errors.Wrap(err, "memory read")
		default:
			prev = bytes.Clone(prev)
		}
		if err := m.apply(op); err != nil {
			m.rollback(undo)
			return err
		}
		undo = append(undo, Op{Key: op.Key, Value: prev})
	}
	return nil
}

func (m *MemoryBackend) apply(op Op) error {
	if op.Value == nil {
		// deleting a missing key is not an error
		if err := m.db.Delete(op.Key); err != nil && !errors.Is(err, memdb.ErrNotFound) {
			return errors.Wrap(err, "memory delete")
		}
		return nil
	}
	return errors.Wrap(m.db.Put(op.Key, op.Value), "memory put")
}

// rollback restores the previous values recorded in undo, newest first.
// memdb only fails a delete of a missing key, which apply ignores.
func (m *MemoryBackend) rollback(undo []Op) {
	for i := len(undo) - 1; i >= 0; i-- {
		_ = m.apply(undo[i])
	}
}

func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.db.Reset()
	return nil
}

// Len returns the number of stored keys.
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.db.Len()
}
