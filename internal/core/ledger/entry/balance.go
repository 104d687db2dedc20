package entry

import (
	"errors"

	"github.com/LeJamon/goTokend/internal/core/amount"
)

var (
	// ErrUnderfunded is returned when the available amount does not cover a debit or lock.
	ErrUnderfunded = errors.New("balance underfunded")

	// ErrLockedUnderflow means more was released from Locked than was locked.
	// It always signals a broken lock/unlock pairing.
	ErrLockedUnderflow = errors.New("locked amount would become negative")

	// ErrNegativeAmount is returned for negative arguments.
	ErrNegativeAmount = errors.New("negative amount")
)

// Balance holds an account's amount of one asset. Amount is the available
// part; Locked is reserved by open offers.
type Balance struct {
	BalanceID string `codec:"id"`
	AccountID string `codec:"account"`
	Asset     string `codec:"asset"`
	Amount    int64  `codec:"amount"`
	Locked    int64  `codec:"locked"`
}

// Lock moves amt from available to locked.
func (b *Balance) Lock(amt int64) error {
	if amt < 0 {
		return ErrNegativeAmount
	}
	if b.Amount < amt {
		return ErrUnderfunded
	}
	locked, ok := amount.SafeSum(b.Locked, amt)
	if !ok {
		return amount.ErrOverflow
	}
	b.Amount -= amt
	b.Locked = locked
	return nil
}

// Unlock moves amt from locked back to available.
func (b *Balance) Unlock(amt int64) error {
	if amt < 0 {
		return ErrNegativeAmount
	}
	if b.Locked < amt {
		return ErrLockedUnderflow
	}
	available, ok := amount.SafeSum(b.Amount, amt)
	if !ok {
		return amount.ErrOverflow
	}
	b.Locked -= amt
	b.Amount = available
	return nil
}

// ChargeFromLocked removes amt from the locked part.
func (b *Balance) ChargeFromLocked(amt int64) error {
	if amt < 0 {
		return ErrNegativeAmount
	}
	if b.Locked < amt {
		return ErrLockedUnderflow
	}
	b.Locked -= amt
	return nil
}

// Credit adds amt to the available part.
func (b *Balance) Credit(amt int64) error {
	if amt < 0 {
		return ErrNegativeAmount
	}
	available, ok := amount.SafeSum(b.Amount, amt)
	if !ok {
		return amount.ErrOverflow
	}
	b.Amount = available
	return nil
}

// Debit removes amt from the available part.
func (b *Balance) Debit(amt int64) error {
	if amt < 0 {
		return ErrNegativeAmount
	}
	if b.Amount < amt {
		return ErrUnderfunded
	}
	b.Amount -= amt
	return nil
}

// Total returns available plus locked.
func (b *Balance) Total() (int64, bool) {
	return amount.SafeSum(b.Amount, b.Locked)
}
