// Package fee computes protocol fees and resolves the fee configured for a
// given operation.
package fee

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goTokend/internal/core/amount"
	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
)

// Type is the operation a fee is charged for.
type Type int32

const (
	// OfferFee is charged on open-market offers.
	OfferFee Type = 1
	// CapitalDeploymentFee is charged to sale participants.
	CapitalDeploymentFee Type = 2
	// InvestFee is charged to the sale owner on the proceeds at close.
	InvestFee Type = 3
)

var typeNames = map[Type]string{
	OfferFee:             "offer_fee",
	CapitalDeploymentFee: "capital_deployment_fee",
	InvestFee:            "invest_fee",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("fee_type(%d)", int32(t))
}

// ParseType returns the fee type for its configuration name.
func ParseType(name string) (Type, error) {
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown fee type %q", name)
}

var (
	// ErrOverflow is returned when a fee does not fit into int64.
	ErrOverflow = errors.New("fee overflow")

	// ErrInvalidPercent is returned for a percent rate outside [0, ONE].
	ErrInvalidPercent = errors.New("percent fee out of range")
)

// Calculate returns percent of amt, rounded up. percent is a fixed-point
// rate where ONE is 100%.
func Calculate(amt, percent int64) (int64, error) {
	if percent < 0 || percent > amount.ONE {
		return 0, ErrInvalidPercent
	}
	if amt < 0 {
		return 0, fmt.Errorf("%w: negative amount", ErrOverflow)
	}
	if amt == 0 || percent == 0 {
		return 0, nil
	}
	fee, ok := amount.BigDivide(amt, percent, amount.ONE, amount.RoundUp)
	if !ok {
		return 0, ErrOverflow
	}
	return fee, nil
}

// Fee is a configured fee: a fixed part charged verbatim plus a percent
// rate applied to the amount.
type Fee struct {
	Fixed   int64
	Percent int64
}

// For returns the fee owed on amt.
func (f Fee) For(amt int64) (int64, error) {
	pct, err := Calculate(amt, f.Percent)
	if err != nil {
		return 0, err
	}
	total, ok := amount.SafeSum(f.Fixed, pct)
	if !ok {
		return 0, ErrOverflow
	}
	return total, nil
}

// IsZero reports whether the fee charges nothing.
func (f Fee) IsZero() bool {
	return f.Fixed == 0 && f.Percent == 0
}

// Query selects the fee for one operation.
type Query struct {
	Type        Type
	Asset       string
	AccountID   string
	AccountType entry.AccountType
	Subtype     int64
	Amount      int64
}

// Lookup resolves configured fees. A query with no matching configuration
// returns the zero Fee.
type Lookup interface {
	Lookup(q Query) (Fee, error)
}
