package kvstore

import (
	"slices"
	"sync"

	"github.com/pkg/errors"
)

// Backend is an ordered key-value store. Keys are compared bytewise.
type Backend interface {
	Name() string

	// Get returns the value for key or ErrNotFound.
	Get(key []byte) ([]byte, error)

	Has(key []byte) (bool, error)

	// Iterate visits every key with the given prefix in ascending order
	// until fn returns false. Key and value may only be used inside fn.
	Iterate(prefix []byte, fn func(key, value []byte) bool) error

	// Write applies every operation atomically.
	Write(ops []Op) error

	Close() error
}

// Op is one write in a batch. A nil Value deletes the key.
type Op struct {
	Key   []byte
	Value []byte
}

// validateOps checks a batch before any of it is written.
func validateOps(ops []Op) error {
	for i, op := range ops {
		if len(op.Key) == 0 {
			return errors.Wrapf(ErrEmptyKey, "op %d", i)
		}
	}
	return nil
}

// BackendFactory creates a backend from configuration.
type BackendFactory func(config Config) (Backend, error)

var (
	backendMu        sync.RWMutex
	backendFactories = make(map[string]BackendFactory)
)

// RegisterBackend registers a backend factory with the given name.
func RegisterBackend(name string, factory BackendFactory) {
	backendMu.Lock()
	defer backendMu.Unlock()
	backendFactories[name] = factory
}

// CreateBackend creates a new backend instance for the given configuration.
func CreateBackend(config Config) (Backend, error) {
	backendMu.RLock()
	factory, ok := backendFactories[config.Backend]
	backendMu.RUnlock()

	if !ok {
		return nil, errors.Wrapf(ErrUnknownBackend, "backend %q", config.Backend)
	}
	return factory(config)
}

// AvailableBackends returns the registered backend names, sorted.
func AvailableBackends() []string {
	backendMu.RLock()
	defer backendMu.RUnlock()

	names := make([]string, 0, len(backendFactories))
	for name := range backendFactories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsBackendAvailable checks if a backend with the given name is available.
func IsBackendAvailable(name string) bool {
	backendMu.RLock()
	_, ok := backendFactories[name]
	backendMu.RUnlock()
	return ok
}

func init() {
	RegisterBackend("pebble", NewPebbleBackend)
	RegisterBackend("leveldb", NewLevelDBBackend)
	RegisterBackend("memory", func(Config) (Backend, error) {
		return NewMemoryBackend(), nil
	})
}
