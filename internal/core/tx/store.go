package tx

import (
	"fmt"

	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
	"github.com/LeJamon/goTokend/internal/core/ledger/keylet"
)

// LedgerStore gives typed access to the entries of a LedgerView. Every
// balance lock, unlock and charge goes through it and is recorded in the
// lock journal.
type LedgerStore struct {
	view  LedgerView
	locks *LockJournal
}

// NewLedgerStore wraps view.
func NewLedgerStore(view LedgerView) *LedgerStore {
	return &LedgerStore{view: view, locks: NewLockJournal()}
}

// View returns the underlying view.
func (s *LedgerStore) View() LedgerView {
	return s.view
}

// Locks returns the journal of lock movements made through the store.
func (s *LedgerStore) Locks() *LockJournal {
	return s.locks
}

func read[T any](s *LedgerStore, k keylet.Keylet, decode func([]byte) (*T, error)) (*T, error) {
	data, err := s.view.Read(k)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", k, err)
	}
	if data == nil {
		return nil, nil
	}
	v, err := decode(data)
	if err != nil {
		return nil, &FatalError{Op: "decode " + k.Type.String(), Err: err}
	}
	return v, nil
}

func write[T any](s *LedgerStore, k keylet.Keylet, v *T, encode func(*T) ([]byte, error), insert bool) error {
	data, err := encode(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", k, err)
	}
	if insert {
		err = s.view.Insert(k, data)
	} else {
		err = s.view.Update(k, data)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", k, err)
	}
	return nil
}

// Header loads the ledger header singleton.
func (s *LedgerStore) Header() (*entry.LedgerHeader, error) {
	h, err := read(s, keylet.Header(), entry.DecodeHeader)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, Fatalf("header", "ledger header missing")
	}
	return h, nil
}

// StoreHeader writes the ledger header, creating it if needed.
func (s *LedgerStore) StoreHeader(h *entry.LedgerHeader) error {
	exists, err := s.view.Exists(keylet.Header())
	if err != nil {
		return err
	}
	return write(s, keylet.Header(), h, entry.EncodeHeader, !exists)
}

// NextID hands out the next id of the given kind.
func (s *LedgerStore) NextID(kind entry.IDKind) (uint64, error) {
	h, err := s.Header()
	if err != nil {
		return 0, err
	}
	id := h.NextID(kind)
	if err := write(s, keylet.Header(), h, entry.EncodeHeader, false); err != nil {
		return 0, err
	}
	return id, nil
}

// LoadAccount returns the account or ErrAccountNotFound.
func (s *LedgerStore) LoadAccount(accountID string) (*entry.Account, error) {
	a, err := read(s, keylet.Account(accountID), entry.DecodeAccount)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
	}
	return a, nil
}

// InsertAccount creates an account.
func (s *LedgerStore) InsertAccount(a *entry.Account) error {
	return write(s, keylet.Account(a.AccountID), a, entry.EncodeAccount, true)
}

// LoadAsset returns the asset or ErrAssetNotFound.
func (s *LedgerStore) LoadAsset(code string) (*entry.Asset, error) {
	a, err := read(s, keylet.Asset(code), entry.DecodeAsset)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, code)
	}
	return a, nil
}

// InsertAsset creates an asset.
func (s *LedgerStore) InsertAsset(a *entry.Asset) error {
	return write(s, keylet.Asset(a.Code), a, entry.EncodeAsset, true)
}

// UpdateAsset loads the asset, applies fn and stores the result.
func (s *LedgerStore) UpdateAsset(code string, fn func(*entry.Asset) error) error {
	a, err := s.LoadAsset(code)
	if err != nil {
		return err
	}
	if err := fn(a); err != nil {
		return err
	}
	return write(s, keylet.Asset(code), a, entry.EncodeAsset, false)
}

// LockIssuance reserves amt of the asset's available issuance.
func (s *LedgerStore) LockIssuance(code string, amt int64) error {
	return s.UpdateAsset(code, func(a *entry.Asset) error { return a.LockIssuance(amt) })
}

// IssueFromPending moves amt of the asset's reservation into issued supply.
func (s *LedgerStore) IssueFromPending(code string, amt int64) error {
	return s.UpdateAsset(code, func(a *entry.Asset) error { return a.IssueFromPending(amt) })
}

// ReleasePending returns amt of the asset's reservation to the available pool.
func (s *LedgerStore) ReleasePending(code string, amt int64) error {
	return s.UpdateAsset(code, func(a *entry.Asset) error { return a.ReleaseIssuance(amt) })
}

// LoadAssetPair returns the pair or nil if it does not exist.
func (s *LedgerStore) LoadAssetPair(base, quote string) (*entry.AssetPair, error) {
	return read(s, keylet.AssetPair(base, quote), entry.DecodeAssetPair)
}

// InsertAssetPair creates an asset pair.
func (s *LedgerStore) InsertAssetPair(p *entry.AssetPair) error {
	return write(s, keylet.AssetPair(p.Base, p.Quote), p, entry.EncodeAssetPair, true)
}
