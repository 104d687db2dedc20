package offer

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/LeJamon/goTokend/internal/core/amount"
	"github.com/LeJamon/goTokend/internal/core/fee"
	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
	"github.com/LeJamon/goTokend/internal/core/tx"
)

// ErrCrossSelf is returned when a taker would trade against its owner's
// own resting offer.
var ErrCrossSelf = errors.New("offer crosses own offer")

// ErrFeeLimit is returned when a fill would charge an offer more fees than
// its owner still accepts to pay.
var ErrFeeLimit = errors.New("fill exceeds accepted fee")

// FillError is a fill that could not be charged to one of its offers.
type FillError struct {
	Offer *entry.Offer
	Err   error
}

func (e *FillError) Error() string {
	return fmt.Sprintf("offer %d: %v", e.Offer.OfferID, e.Err)
}

func (e *FillError) Unwrap() error { return e.Err }

// FillRecord describes one match between the taker and a resting offer.
type FillRecord struct {
	// OfferID is the resting offer that was matched
	OfferID uint64 `json:"OfferID"`

	// Counterparty owns the resting offer
	Counterparty string `json:"Counterparty"`

	BaseBalance  string `json:"BaseBalance"`
	QuoteBalance string `json:"QuoteBalance"`

	BaseAmount  int64 `json:"BaseAmount"`
	QuoteAmount int64 `json:"QuoteAmount"`

	// TradePrice is always the resting offer's price
	TradePrice int64 `json:"TradePrice"`

	TakerFeePaid int64 `json:"TakerFeePaid"`
	MakerFeePaid int64 `json:"MakerFeePaid"`
}

// Exchange crosses taker offers against the resting offers of a book.
// Both the taker and every resting offer must already hold their locks.
type Exchange struct {
	ctx *tx.ApplyContext
}

// NewExchange returns an exchange working inside one request.
func NewExchange(ctx *tx.ApplyContext) *Exchange {
	return &Exchange{ctx: ctx}
}

// Match crosses taker against the opposite side of its book, best offer
// first, until the taker is filled, no resting offer crosses it, or the
// side is empty. It returns the fills and the unfilled remainder of the
// taker, nil when the taker was consumed. The remainder is not placed in
// the book; whatever it still holds locked stays locked.
//
// A resting market offer that can no longer pay the fee of its next fill
// is canceled and matching goes on with the next one.
func (x *Exchange) Match(taker *entry.Offer) ([]FillRecord, *entry.Offer, error) {
	book := BookOf(x.ctx.Store, taker)
	var fills []FillRecord
	for {
		maker, err := book.Best(!taker.IsBuy)
		if err != nil {
			return nil, nil, err
		}
		if maker == nil || !taker.Crosses(maker) {
			return fills, taker, nil
		}
		if maker.OwnerID == taker.OwnerID {
			return nil, nil, ErrCrossSelf
		}

		fill, err := x.cross(taker, maker)
		var fe *FillError
		if errors.As(err, &fe) && fe.Offer == maker && maker.OrderBookID == entry.MarketOrderBook {
			x.ctx.Log.Info("resting offer cannot pay its fee, canceled",
				zap.Uint64("offer", maker.OfferID),
				zap.String("owner", maker.OwnerID),
				zap.Error(fe.Err))
			if err := Cancel(x.ctx, maker); err != nil {
				return nil, nil, err
			}
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		fills = append(fills, fill)

		makerDone, err := x.settleOffer(maker)
		if err != nil {
			return nil, nil, err
		}
		if makerDone {
			if err := x.ctx.Store.DeleteOffer(maker); err != nil {
				return nil, nil, err
			}
		} else if err := x.ctx.Store.StoreOffer(maker); err != nil {
			return nil, nil, err
		}

		takerDone, err := x.settleOffer(taker)
		if err != nil {
			return nil, nil, err
		}
		if takerDone {
			return fills, nil, nil
		}
	}
}

// cross moves funds for one match at the maker's price and reduces both
// offers by the matched amounts.
func (x *Exchange) cross(taker, maker *entry.Offer) (FillRecord, error) {
	price := maker.Price
	base := min(taker.BaseAmount, maker.BaseAmount)

	buyer, seller := taker, maker
	if !taker.IsBuy {
		buyer, seller = maker, taker
	}

	quote, ok := amount.QuoteAmount(base, price)
	if !ok {
		return FillRecord{}, amount.ErrOverflow
	}
	// the buyer never pays more than it still holds locked
	quote = min(quote, buyer.QuoteAmount)

	// every fill pays its own rounded up fee, within what each side
	// accepts to pay
	buyerFee, err := fee.Calculate(quote, buyer.PercentFee)
	if err != nil {
		return FillRecord{}, err
	}
	if buyerFee > buyer.FeeLimit {
		return FillRecord{}, &FillError{Offer: buyer, Err: ErrFeeLimit}
	}
	sellerFee, err := fee.Calculate(quote, seller.PercentFee)
	if err != nil {
		return FillRecord{}, err
	}
	sellerFee = min(sellerFee, quote)
	if sellerFee > seller.FeeLimit {
		return FillRecord{}, &FillError{Offer: seller, Err: ErrFeeLimit}
	}

	store := x.ctx.Store
	// the buyer's locked fee covers the fill first, the rest comes from its
	// available balance
	fromLock := min(buyerFee, buyer.Fee)
	if short := buyerFee - fromLock; short > 0 {
		err := store.DebitBalance(buyer.QuoteBalance, short)
		if errors.Is(err, entry.ErrUnderfunded) {
			return FillRecord{}, &FillError{Offer: buyer, Err: err}
		}
		if err != nil {
			return FillRecord{}, err
		}
	}
	charge, ok := amount.SafeSum(quote, fromLock)
	if !ok {
		return FillRecord{}, amount.ErrOverflow
	}
	if err := store.ChargeLocked(buyer.QuoteBalance, charge); err != nil {
		return FillRecord{}, err
	}
	if err := store.CreditBalance(buyer.BaseBalance, base); err != nil {
		return FillRecord{}, err
	}
	if err := store.ChargeLocked(seller.BaseBalance, base); err != nil {
		return FillRecord{}, err
	}
	if err := store.CreditBalance(seller.QuoteBalance, quote-sellerFee); err != nil {
		return FillRecord{}, err
	}
	if total := buyerFee + sellerFee; total > 0 {
		commission, err := x.ctx.CommissionBalance(buyer.QuoteAsset)
		if err != nil {
			return FillRecord{}, err
		}
		if err := store.CreditBalance(commission, total); err != nil {
			return FillRecord{}, err
		}
	}

	buyer.BaseAmount -= base
	buyer.QuoteAmount -= quote
	buyer.Fee -= fromLock
	buyer.FeeLimit -= buyerFee
	seller.BaseAmount -= base
	seller.FeeLimit -= sellerFee

	fill := FillRecord{
		OfferID:      maker.OfferID,
		Counterparty: maker.OwnerID,
		BaseBalance:  maker.BaseBalance,
		QuoteBalance: maker.QuoteBalance,
		BaseAmount:   base,
		QuoteAmount:  quote,
		TradePrice:   price,
		TakerFeePaid: buyerFee,
		MakerFeePaid: sellerFee,
	}
	if !taker.IsBuy {
		fill.TakerFeePaid, fill.MakerFeePaid = sellerFee, buyerFee
	}

	x.ctx.Log.Debug("offers crossed",
		zap.Uint64("maker", maker.OfferID),
		zap.Int64("base", base),
		zap.Int64("quote", quote),
		zap.Int64("price", price))
	return fill, nil
}

// settleOffer brings an offer reduced by a fill back in line with what it
// still needs. A buy offer keeps locked only the quote and fee its remaining
// base amount needs at its own price; the excess is unlocked. It reports
// whether the offer is consumed, in which case every remaining lock has
// been released.
func (x *Exchange) settleOffer(o *entry.Offer) (bool, error) {
	if !o.IsBuy {
		if o.BaseAmount == 0 {
			return true, nil
		}
		quote, ok := amount.QuoteAmount(o.BaseAmount, o.Price)
		if !ok {
			return false, amount.ErrOverflow
		}
		o.QuoteAmount = quote
		f, err := fee.Calculate(quote, o.PercentFee)
		if err != nil {
			return false, err
		}
		o.Fee = f
		return false, nil
	}

	// a buy offer with nothing left to pay with is dust
	if o.BaseAmount == 0 || o.QuoteAmount == 0 {
		residual := o.QuoteAmount + o.Fee
		o.QuoteAmount, o.Fee = 0, 0
		if residual > 0 {
			if err := x.ctx.Store.UnlockBalance(o.QuoteBalance, residual); err != nil {
				return false, err
			}
		}
		return true, nil
	}

	var excess int64
	need, ok := amount.QuoteAmount(o.BaseAmount, o.Price)
	if !ok {
		return false, amount.ErrOverflow
	}
	if need < o.QuoteAmount {
		excess += o.QuoteAmount - need
		o.QuoteAmount = need
	}
	needFee, err := fee.Calculate(o.QuoteAmount, o.PercentFee)
	if err != nil {
		return false, err
	}
	if needFee < o.Fee {
		excess += o.Fee - needFee
		o.Fee = needFee
	}
	if excess > 0 {
		if err := x.ctx.Store.UnlockBalance(o.QuoteBalance, excess); err != nil {
			return false, err
		}
	}
	return false, nil
}
