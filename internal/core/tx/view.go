package tx

import "github.com/LeJamon/goTokend/internal/core/ledger/keylet"

// ReadView provides read access to ledger state
type ReadView interface {
	// Read reads a ledger entry. A missing entry returns nil data and no error.
	Read(k keylet.Keylet) ([]byte, error)

	// Exists checks if an entry exists
	Exists(k keylet.Keylet) (bool, error)

	// ForEach visits every entry whose key starts with prefix, in ascending
	// key order. If fn returns false, iteration stops early.
	ForEach(prefix []byte, fn func(key, data []byte) bool) error
}

// LedgerView provides read/write access to ledger state
type LedgerView interface {
	ReadView

	// Insert adds a new entry
	Insert(k keylet.Keylet, data []byte) error

	// Update modifies an existing entry
	Update(k keylet.Keylet, data []byte) error

	// Erase removes an entry
	Erase(k keylet.Keylet) error
}

// Op is one write of a committed change set. Data is nil for deletes.
type Op struct {
	Key  []byte
	Data []byte
}

// Base is the persistent ledger state requests are applied against.
// ApplyBatch must apply every op or none of them.
type Base interface {
	ReadView
	ApplyBatch(ops []Op) error
}
