package kvstore

import (
	"github.com/pkg/errors"
)

// Config selects and tunes the storage backend.
type Config struct {
	// Backend is one of the registered backend names: pebble, leveldb, memory
	Backend string `mapstructure:"type"`

	// Path is the database directory, unused by the memory backend
	Path string `mapstructure:"path"`

	// CacheSize is the number of decoded values kept in memory, 0 disables it
	CacheSize int `mapstructure:"cache_size"`

	// Compression is lz4 or none
	Compression string `mapstructure:"compression"`
}

// DefaultConfig returns the default on-disk configuration.
func DefaultConfig() Config {
	return Config{
		Backend:     "pebble",
		Path:        "./data/ledger",
		CacheSize:   4096,
		Compression: "lz4",
	}
}

// MemoryConfig returns a configuration for a throwaway in-memory store.
func MemoryConfig() Config {
	return Config{Backend: "memory", CacheSize: 256, Compression: "none"}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if !IsBackendAvailable(c.Backend) {
		return errors.Wrapf(ErrUnknownBackend, "backend %q", c.Backend)
	}
	if c.Backend != "memory" && c.Path == "" {
		return errors.New("path must be specified")
	}
	if c.CacheSize < 0 {
		return errors.New("cache_size must be non-negative")
	}
	if _, err := NewCompressor(c.Compression); err != nil {
		return err
	}
	return nil
}
