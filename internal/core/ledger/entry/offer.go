package entry

import "github.com/LeJamon/goTokend/internal/core/amount"

// OfferVersion is the extension tag of a stored offer.
type OfferVersion int32

const OfferVersionEmpty OfferVersion = 0

// MarketOrderBook is the order book id of the open market.
const MarketOrderBook uint64 = 0

// Offer is a standing order to exchange BaseAmount of BaseAsset for
// QuoteAsset at Price. A buy offer locks QuoteAmount+Fee on the quote
// balance, a sell offer locks BaseAmount on the base balance. FeeLimit is
// what the owner still accepts to pay in fees over the offer's remaining
// fills.
type Offer struct {
	OfferID      uint64       `codec:"id"`
	OwnerID      string       `codec:"owner"`
	OrderBookID  uint64       `codec:"book"`
	BaseAsset    string       `codec:"base_asset"`
	QuoteAsset   string       `codec:"quote_asset"`
	BaseBalance  string       `codec:"base_balance"`
	QuoteBalance string       `codec:"quote_balance"`
	BaseAmount   int64        `codec:"base_amount"`
	QuoteAmount  int64        `codec:"quote_amount"`
	Price        int64        `codec:"price"`
	Fee          int64        `codec:"fee"`
	PercentFee   int64        `codec:"percent_fee"`
	FeeLimit     int64        `codec:"fee_limit"`
	IsBuy        bool         `codec:"is_buy"`
	CreatedAt    int64        `codec:"created_at"`
	Version      OfferVersion `codec:"version"`
}

// LockedAmount is what the offer currently holds locked on its balance.
func (o *Offer) LockedAmount() (int64, bool) {
	if o.IsBuy {
		return amount.SafeSum(o.QuoteAmount, o.Fee)
	}
	return o.BaseAmount, true
}

// LockedBalance is the balance the offer's lock is held on.
func (o *Offer) LockedBalance() string {
	if o.IsBuy {
		return o.QuoteBalance
	}
	return o.BaseBalance
}

// Crosses reports whether a taker offer o crosses the resting offer maker.
func (o *Offer) Crosses(maker *Offer) bool {
	if o.IsBuy == maker.IsBuy {
		return false
	}
	if o.IsBuy {
		return o.Price >= maker.Price
	}
	return o.Price <= maker.Price
}

// Clone returns a copy of the offer.
func (o *Offer) Clone() *Offer {
	c := *o
	return &c
}
