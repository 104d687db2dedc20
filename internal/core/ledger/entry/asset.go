package entry

import (
	"errors"

	"github.com/LeJamon/goTokend/internal/core/amount"
)

// AssetPolicy flags
const (
	AssetPolicyTransferable uint32 = 0x00000001
	AssetPolicyBaseAsset    uint32 = 0x00000002
	AssetPolicyRequiresKYC  uint32 = 0x00000004
)

// AssetPair policy flags
const (
	PairPolicyTradable uint32 = 0x00000001
)

const maxAssetCodeLen = 16

var (
	// ErrInsufficientIssuance is returned when the asset cannot reserve more issuance.
	ErrInsufficientIssuance = errors.New("insufficient available issuance")

	// ErrPendingUnderflow signals a broken issuance reservation.
	ErrPendingUnderflow = errors.New("pending issuance would become negative")
)

// Asset is an issued asset. MaxIssuanceAmount is always
// AvailableForIssuance + PendingIssuance + Issued.
type Asset struct {
	Code                 string `codec:"code"`
	OwnerID              string `codec:"owner"`
	Policies             uint32 `codec:"policies"`
	MaxIssuanceAmount    int64  `codec:"max_issuance"`
	AvailableForIssuance int64  `codec:"available"`
	PendingIssuance      int64  `codec:"pending"`
	Issued               int64  `codec:"issued"`
}

// RequiresKYC reports whether holders of the asset must be verified.
func (a *Asset) RequiresKYC() bool {
	return a.Policies&AssetPolicyRequiresKYC != 0
}

// LockIssuance reserves amt of the available issuance.
func (a *Asset) LockIssuance(amt int64) error {
	if amt < 0 {
		return ErrNegativeAmount
	}
	if a.AvailableForIssuance < amt {
		return ErrInsufficientIssuance
	}
	pending, ok := amount.SafeSum(a.PendingIssuance, amt)
	if !ok {
		return amount.ErrOverflow
	}
	a.AvailableForIssuance -= amt
	a.PendingIssuance = pending
	return nil
}

// ReleaseIssuance returns amt of the pending reservation to the available pool.
func (a *Asset) ReleaseIssuance(amt int64) error {
	if amt < 0 {
		return ErrNegativeAmount
	}
	if a.PendingIssuance < amt {
		return ErrPendingUnderflow
	}
	available, ok := amount.SafeSum(a.AvailableForIssuance, amt)
	if !ok {
		return amount.ErrOverflow
	}
	a.PendingIssuance -= amt
	a.AvailableForIssuance = available
	return nil
}

// IssueFromPending converts amt of the pending reservation into issued supply.
func (a *Asset) IssueFromPending(amt int64) error {
	if amt < 0 {
		return ErrNegativeAmount
	}
	if a.PendingIssuance < amt {
		return ErrPendingUnderflow
	}
	issued, ok := amount.SafeSum(a.Issued, amt)
	if !ok {
		return amount.ErrOverflow
	}
	a.PendingIssuance -= amt
	a.Issued = issued
	return nil
}

// AssetPair is the key of an open-market order book.
type AssetPair struct {
	Base         string `codec:"base"`
	Quote        string `codec:"quote"`
	CurrentPrice int64  `codec:"price"`
	Policies     uint32 `codec:"policies"`
}

// IsTradable reports whether offers may be placed on the pair.
func (p *AssetPair) IsTradable() bool {
	return p.Policies&PairPolicyTradable != 0
}

// ValidAssetCode reports whether code is a well-formed asset code:
// 1 to 16 ASCII letters or digits.
func ValidAssetCode(code string) bool {
	if len(code) == 0 || len(code) > maxAssetCodeLen {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if !(c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}
