package kvstore

import "errors"

var (
	// ErrNotFound is returned by a backend for a missing key
	ErrNotFound = errors.New("key not found")

	// ErrClosed is returned when operating on a closed store
	ErrClosed = errors.New("store is closed")

	// ErrUnknownBackend is returned for an unregistered backend name
	ErrUnknownBackend = errors.New("unknown backend")

	// ErrUnknownCompressor is returned for an unsupported compression name
	ErrUnknownCompressor = errors.New("unknown compressor")

	// ErrEmptyKey is returned for a write to an empty key
	ErrEmptyKey = errors.New("empty key")

	// ErrCorrupt is returned when a stored value cannot be decoded
	ErrCorrupt = errors.New("stored value is corrupt")
)
