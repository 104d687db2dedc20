package tx

import (
	"fmt"
	"slices"

	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
	"github.com/LeJamon/goTokend/internal/core/ledger/keylet"
)

// LockJournal records the net locked amount moved on each balance during
// one request. Lock adds, Unlock and ChargeFromLocked subtract.
type LockJournal struct {
	net map[string]int64
}

// NewLockJournal creates an empty journal.
func NewLockJournal() *LockJournal {
	return &LockJournal{net: make(map[string]int64)}
}

func (j *LockJournal) record(balanceID string, delta int64) {
	j.net[balanceID] += delta
	if j.net[balanceID] == 0 {
		delete(j.net, balanceID)
	}
}

// Net returns the net locked delta recorded for balanceID.
func (j *LockJournal) Net(balanceID string) int64 {
	return j.net[balanceID]
}

// Balances returns every balance with a non-zero net delta, sorted.
func (j *LockJournal) Balances() []string {
	ids := make([]string, 0, len(j.net))
	for id := range j.net {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Reset forgets everything recorded so far.
func (j *LockJournal) Reset() {
	clear(j.net)
}

const balanceIDFormat = "bal%08d"

// LoadBalance returns the balance or ErrBalanceNotFound.
func (s *LedgerStore) LoadBalance(balanceID string) (*entry.Balance, error) {
	b, err := read(s, keylet.Balance(balanceID), entry.DecodeBalance)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("%w: %s", ErrBalanceNotFound, balanceID)
	}
	return b, nil
}

// InsertBalance creates a balance and its account index entry.
func (s *LedgerStore) InsertBalance(b *entry.Balance) error {
	if err := write(s, keylet.Balance(b.BalanceID), b, entry.EncodeBalance, true); err != nil {
		return err
	}
	ref := &entry.Ref{Key: b.BalanceID}
	return write(s, keylet.AccountBalance(b.AccountID, b.Asset), ref,
		func(r *entry.Ref) ([]byte, error) { return entry.EncodeRef(entry.TypeAccountBalance, r) }, true)
}

// LoadBalanceFor returns the balance account holds in asset, or nil.
func (s *LedgerStore) LoadBalanceFor(accountID, asset string) (*entry.Balance, error) {
	ref, err := read(s, keylet.AccountBalance(accountID, asset),
		func(data []byte) (*entry.Ref, error) { return entry.DecodeRef(entry.TypeAccountBalance, data) })
	if err != nil || ref == nil {
		return nil, err
	}
	b, err := s.LoadBalance(ref.Key)
	if err != nil {
		return nil, &FatalError{Op: "balance index", Err: err}
	}
	return b, nil
}

// LoadOrCreateBalance returns the balance account holds in asset, creating
// an empty one if the account has none.
func (s *LedgerStore) LoadOrCreateBalance(accountID, asset string) (*entry.Balance, error) {
	b, err := s.LoadBalanceFor(accountID, asset)
	if err != nil || b != nil {
		return b, err
	}
	id, err := s.NextID(entry.IDBalance)
	if err != nil {
		return nil, err
	}
	b = &entry.Balance{
		BalanceID: fmt.Sprintf(balanceIDFormat, id),
		AccountID: accountID,
		Asset:     asset,
	}
	if err := s.InsertBalance(b); err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBalance loads the balance, applies fn and stores the result. The
// balance is always reloaded so two references to one balance never
// overwrite each other.
func (s *LedgerStore) UpdateBalance(balanceID string, fn func(*entry.Balance) error) error {
	b, err := s.LoadBalance(balanceID)
	if err != nil {
		return err
	}
	if err := fn(b); err != nil {
		return err
	}
	return write(s, keylet.Balance(balanceID), b, entry.EncodeBalance, false)
}

// LockBalance moves amt from available to locked.
func (s *LedgerStore) LockBalance(balanceID string, amt int64) error {
	if err := s.UpdateBalance(balanceID, func(b *entry.Balance) error { return b.Lock(amt) }); err != nil {
		return err
	}
	s.locks.record(balanceID, amt)
	return nil
}

// UnlockBalance moves amt from locked back to available.
func (s *LedgerStore) UnlockBalance(balanceID string, amt int64) error {
	if err := s.UpdateBalance(balanceID, func(b *entry.Balance) error { return b.Unlock(amt) }); err != nil {
		return err
	}
	s.locks.record(balanceID, -amt)
	return nil
}

// ChargeLocked spends amt out of the locked part.
func (s *LedgerStore) ChargeLocked(balanceID string, amt int64) error {
	if err := s.UpdateBalance(balanceID, func(b *entry.Balance) error { return b.ChargeFromLocked(amt) }); err != nil {
		return err
	}
	s.locks.record(balanceID, -amt)
	return nil
}

// CreditBalance adds amt to the available part.
func (s *LedgerStore) CreditBalance(balanceID string, amt int64) error {
	return s.UpdateBalance(balanceID, func(b *entry.Balance) error { return b.Credit(amt) })
}

// DebitBalance removes amt from the available part.
func (s *LedgerStore) DebitBalance(balanceID string, amt int64) error {
	return s.UpdateBalance(balanceID, func(b *entry.Balance) error { return b.Debit(amt) })
}
