package sale

import (
	"fmt"

	"github.com/LeJamon/goTokend/internal/core/tx/offer"
)

// Effect is the outcome of evaluating a sale.
type Effect int

const (
	EffectCanceled Effect = iota + 1
	EffectClosed
	EffectUpdated
)

func (e Effect) String() string {
	switch e {
	case EffectCanceled:
		return "Canceled"
	case EffectClosed:
		return "Closed"
	case EffectUpdated:
		return "Updated"
	}
	return fmt.Sprintf("Effect(%d)", int(e))
}

// MarshalText implements encoding.TextMarshaler
func (e Effect) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// QuoteAssetResult reports what happened on one quote asset of the sale.
type QuoteAssetResult struct {
	QuoteAsset string `json:"QuoteAsset"`

	// CurrentCap is the amount raised in the quote asset
	CurrentCap int64 `json:"CurrentCap"`

	// BaseAmount is the base asset delivered to participants
	BaseAmount int64 `json:"BaseAmount,omitempty"`

	// OwnerProceeds is what the owner received before its fee
	OwnerProceeds int64 `json:"OwnerProceeds,omitempty"`
	OwnerFee      int64 `json:"OwnerFee,omitempty"`

	// Refunded counts participations returned to their owners
	Refunded int `json:"Refunded,omitempty"`

	Fills []offer.FillRecord `json:"Fills,omitempty"`
}

// CheckSaleStateResult is the CheckSaleState response.
type CheckSaleStateResult struct {
	Effect            Effect             `json:"Effect"`
	SaleID            uint64             `json:"SaleID"`
	QuoteAssetResults []QuoteAssetResult `json:"QuoteAssetResults"`
}
