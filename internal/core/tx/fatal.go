package tx

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goTokend/internal/core/amount"
	"github.com/LeJamon/goTokend/internal/core/fee"
	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
)

// FatalError reports a broken ledger invariant. It aborts the request and
// is never treated as an ordinary rejection.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	return "unexpected state: " + e.Op + ": " + e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Fatalf builds a FatalError from a format string.
func Fatalf(op, format string, args ...any) *FatalError {
	return &FatalError{Op: op, Err: fmt.Errorf(format, args...)}
}

// IsFatal reports whether err is or wraps a FatalError or one of the
// entry invariant errors.
func IsFatal(err error) bool {
	var fe *FatalError
	if errors.As(err, &fe) {
		return true
	}
	return errors.Is(err, entry.ErrLockedUnderflow) ||
		errors.Is(err, entry.ErrPendingUnderflow) ||
		errors.Is(err, entry.ErrNegativeCap) ||
		errors.Is(err, entry.ErrInvalidMigration)
}

// ErrBalanceNotFound, ErrOfferNotFound and friends are returned by the
// LedgerStore accessors when a referenced entry is missing.
var (
	ErrBalanceNotFound = errors.New("balance not found")
	ErrOfferNotFound   = errors.New("offer not found")
	ErrSaleNotFound    = errors.New("sale not found")
	ErrAssetNotFound   = errors.New("asset not found")
	ErrAccountNotFound = errors.New("account not found")
)

// Classify maps an error raised while applying a request to its result
// code. Errors that are not part of the request outcome, such as storage
// failures or broken invariants, are returned so the caller can abort.
func Classify(err error) (Result, error) {
	if err == nil {
		return TesSUCCESS, nil
	}
	if IsFatal(err) {
		var fe *FatalError
		if !errors.As(err, &fe) {
			fe = &FatalError{Op: "apply", Err: err}
		}
		return TefINVARIANT, fe
	}
	switch {
	case errors.Is(err, entry.ErrUnderfunded):
		return TecUNDERFUNDED, nil
	case errors.Is(err, fee.ErrInvalidPercent):
		return TecINVALID_PERCENT_FEE, nil
	case errors.Is(err, fee.ErrOverflow):
		return TecFEE_OVERFLOW, nil
	case errors.Is(err, amount.ErrOverflow):
		return TecOVERFLOW, nil
	case errors.Is(err, entry.ErrInsufficientIssuance):
		return TecINSUFFICIENT_ISSUANCE, nil
	case errors.Is(err, ErrBalanceNotFound):
		return TecBALANCE_NOT_FOUND, nil
	case errors.Is(err, ErrOfferNotFound):
		return TecOFFER_NOT_FOUND, nil
	case errors.Is(err, ErrSaleNotFound):
		return TecSALE_NOT_FOUND, nil
	case errors.Is(err, ErrAssetNotFound):
		return TecASSET_NOT_FOUND, nil
	case errors.Is(err, ErrAccountNotFound):
		return TecACCOUNT_NOT_FOUND, nil
	}
	return TefINTERNAL, err
}
