// Package kvstore persists ledger entries in an ordered key-value backend.
package kvstore

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/LeJamon/goTokend/internal/core/ledger/keylet"
	"github.com/LeJamon/goTokend/internal/core/tx"
)

var _ tx.Base = (*Store)(nil)

// Store is the persistent ledger state. Values are compressed on the way
// in and recently read values are kept decoded in an LRU cache.
type Store struct {
	mu         sync.RWMutex
	backend    Backend
	compressor Compressor
	cache      *lru.Cache[string, []byte]
	log        *zap.Logger
	closed     bool
}

// Open creates the backend selected by config and wraps it in a Store.
func Open(config Config, log *zap.Logger) (*Store, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid database config")
	}
	backend, err := CreateBackend(config)
	if err != nil {
		return nil, err
	}
	s, err := New(backend, config, log)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already open backend.
func New(backend Backend, config Config, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	compressor, err := NewCompressor(config.Compression)
	if err != nil {
		return nil, err
	}
	s := &Store{
		backend:    backend,
		compressor: compressor,
		log:        log.Named("kvstore"),
	}
	if config.CacheSize > 0 {
		if s.cache, err = lru.New[string, []byte](config.CacheSize); err != nil {
			return nil, errors.Wrap(err, "create cache")
		}
	}
	s.log.Info("ledger store opened",
		zap.String("backend", backend.Name()),
		zap.String("compression", compressor.Name()),
		zap.Int("cache_size", config.CacheSize))
	return s, nil
}

// Backend returns the backend the store writes to.
func (s *Store) Backend() Backend {
	return s.backend
}

// Read returns the entry stored under k, or nil if there is none.
func (s *Store) Read(k keylet.Keylet) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	if s.cache != nil {
		if data, ok := s.cache.Get(string(k.Key)); ok {
			return data, nil
		}
	}
	raw, err := s.backend.Get(k.Key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", k)
	}
	data, err := s.compressor.Decompress(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", k)
	}
	if s.cache != nil {
		s.cache.Add(string(k.Key), data)
	}
	return data, nil
}

// Exists reports whether an entry is stored under k.
func (s *Store) Exists(k keylet.Keylet) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, ErrClosed
	}
	if s.cache != nil && s.cache.Contains(string(k.Key)) {
		return true, nil
	}
	ok, err := s.backend.Has(k.Key)
	return ok, errors.Wrapf(err, "exists %s", k)
}

// ForEach visits every entry under prefix in key order.
func (s *Store) ForEach(prefix []byte, fn func(key, data []byte) bool) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	var decodeErr error
	err := s.backend.Iterate(prefix, func(key, raw []byte) bool {
		data, err := s.compressor.Decompress(raw)
		if err != nil {
			decodeErr = errors.Wrapf(err, "decode key %x", key)
			return false
		}
		return fn(key, data)
	})
	if err != nil {
		return errors.Wrapf(err, "iterate %x", prefix)
	}
	return decodeErr
}

// ApplyBatch commits a change set atomically.
func (s *Store) ApplyBatch(ops []tx.Op) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	batch := make([]Op, 0, len(ops))
	for _, op := range ops {
		if op.Data == nil {
			batch = append(batch, Op{Key: op.Key})
			continue
		}
		value, err := s.compressor.Compress(op.Data)
		if err != nil {
			return errors.Wrapf(err, "encode key %x", op.Key)
		}
		batch = append(batch, Op{Key: op.Key, Value: value})
	}
	if err := s.backend.Write(batch); err != nil {
		return errors.Wrap(err, "write batch")
	}

	if s.cache != nil {
		for _, op := range ops {
			if op.Data == nil {
				s.cache.Remove(string(op.Key))
			} else {
				s.cache.Add(string(op.Key), op.Data)
			}
		}
	}
	s.log.Debug("batch committed", zap.Int("ops", len(ops)))
	return nil
}

// Close closes the backend. Further calls return ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.cache != nil {
		s.cache.Purge()
	}
	s.log.Info("ledger store closed")
	return s.backend.Close()
}
