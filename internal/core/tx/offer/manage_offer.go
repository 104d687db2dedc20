// Package offer implements the ManageOffer request and the matching engine
// behind it.
package offer

import (
	"errors"

	"go.uber.org/zap"

	"github.com/LeJamon/goTokend/internal/core/amount"
	"github.com/LeJamon/goTokend/internal/core/fee"
	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
	"github.com/LeJamon/goTokend/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeManageOffer, func() tx.Request {
		return &ManageOffer{}
	})
}

// ManageOffer creates an offer, crossing it against the book first, or
// cancels an existing one when Amount is zero.
type ManageOffer struct {
	// Account owns the offer (required)
	Account string `json:"Account"`

	// OfferID selects the offer to cancel; zero creates a new offer
	OfferID uint64 `json:"OfferID,omitempty"`

	BaseBalance  string `json:"BaseBalance,omitempty"`
	QuoteBalance string `json:"QuoteBalance,omitempty"`

	// Amount is the base amount to trade, zero to cancel
	Amount int64 `json:"Amount"`

	// Price is quote units per base unit, fixed-point
	Price int64 `json:"Price,omitempty"`

	IsBuy bool `json:"IsBuy"`

	// Fee is the most the account accepts to pay for the offer
	Fee int64 `json:"Fee,omitempty"`

	// OrderBookID is 0 for the open market, else the sale id
	OrderBookID uint64 `json:"OrderBookID,omitempty"`
}

// Result is the ManageOffer response.
type Result struct {
	OffersClaimed []FillRecord `json:"OffersClaimed"`

	// Offer is the part of the new offer left resting in the book
	Offer *entry.Offer `json:"Offer,omitempty"`
}

// NewManageOffer creates an offer creation request.
func NewManageOffer(account, baseBalance, quoteBalance string, amt, price int64, isBuy bool) *ManageOffer {
	return &ManageOffer{
		Account:      account,
		BaseBalance:  baseBalance,
		QuoteBalance: quoteBalance,
		Amount:       amt,
		Price:        price,
		IsBuy:        isBuy,
	}
}

// NewCancelOffer creates a request deleting offerID from book.
func NewCancelOffer(account string, book, offerID uint64) *ManageOffer {
	return &ManageOffer{Account: account, OfferID: offerID, OrderBookID: book}
}

func (m *ManageOffer) RequestType() tx.Type { return tx.TypeManageOffer }

func (m *ManageOffer) Source() string { return m.Account }

func (m *ManageOffer) isDelete() bool {
	return m.OfferID != 0 && m.Amount == 0
}

// Preflight validates the request on its own.
func (m *ManageOffer) Preflight() tx.Result {
	if m.Account == "" {
		return tx.TemBAD_SOURCE
	}
	if m.isDelete() {
		return tx.TesSUCCESS
	}
	if m.OfferID != 0 {
		return tx.TemOFFER_UPDATE_NOT_ALLOWED
	}
	if m.Amount <= 0 {
		return tx.TemBAD_AMOUNT
	}
	if m.Price <= 0 {
		return tx.TemBAD_PRICE
	}
	if m.Fee < 0 {
		return tx.TemBAD_FEE
	}
	if m.BaseBalance == "" || m.QuoteBalance == "" {
		return tx.TemMALFORMED
	}
	if m.BaseBalance == m.QuoteBalance {
		return tx.TemSAME_BALANCE
	}
	return tx.TesSUCCESS
}

// Apply runs the request against the ledger.
func (m *ManageOffer) Apply(ctx *tx.ApplyContext) tx.Result {
	if m.isDelete() {
		return m.applyDelete(ctx)
	}
	return m.applyCreate(ctx)
}

func (m *ManageOffer) applyCreate(ctx *tx.ApplyContext) tx.Result {
	store := ctx.Store

	base, res := m.ownBalance(ctx, m.BaseBalance)
	if !res.IsSuccess() {
		return res
	}
	quote, res := m.ownBalance(ctx, m.QuoteBalance)
	if !res.IsSuccess() {
		return res
	}
	if base.Asset == quote.Asset {
		return tx.TecBALANCE_ASSET_MISMATCH
	}

	quoteAmount, ok := amount.QuoteAmount(m.Amount, m.Price)
	if !ok {
		return tx.TecOVERFLOW
	}

	o := &entry.Offer{
		OwnerID:      m.Account,
		OrderBookID:  m.OrderBookID,
		BaseAsset:    base.Asset,
		QuoteAsset:   quote.Asset,
		BaseBalance:  base.BalanceID,
		QuoteBalance: quote.BalanceID,
		BaseAmount:   m.Amount,
		QuoteAmount:  quoteAmount,
		Price:        m.Price,
		IsBuy:        m.IsBuy,
		CreatedAt:    ctx.CloseTime,
	}

	var sale *entry.Sale
	feeType := fee.OfferFee
	if m.OrderBookID == entry.MarketOrderBook {
		pair, err := store.LoadAssetPair(o.BaseAsset, o.QuoteAsset)
		if err != nil {
			return ctx.Fail(err)
		}
		if pair == nil {
			return tx.TecORDER_BOOK_NOT_FOUND
		}
		if !pair.IsTradable() {
			return tx.TecASSET_PAIR_NOT_TRADABLE
		}
	} else {
		var err error
		sale, err = store.LoadSale(m.OrderBookID)
		if errors.Is(err, tx.ErrSaleNotFound) {
			return tx.TecORDER_BOOK_NOT_FOUND
		}
		if err != nil {
			return ctx.Fail(err)
		}
		if res := checkParticipation(ctx, sale, o); !res.IsSuccess() {
			return res
		}
		feeType = fee.CapitalDeploymentFee
	}

	if res := m.applyFee(ctx, o, feeType); !res.IsSuccess() {
		return res
	}

	locked, ok := o.LockedAmount()
	if !ok {
		return tx.TecOVERFLOW
	}
	if err := store.LockBalance(o.LockedBalance(), locked); err != nil {
		return ctx.Fail(err)
	}

	if sale != nil {
		return m.placeParticipation(ctx, sale, o)
	}

	fills, rest, err := NewExchange(ctx).Match(o)
	if errors.Is(err, ErrCrossSelf) {
		return tx.TecCROSS_SELF
	}
	if errors.Is(err, ErrFeeLimit) {
		return tx.TecFEE_MISMATCH
	}
	if err != nil {
		return ctx.Fail(err)
	}
	if rest != nil {
		if err := BookOf(store, rest).Place(rest); err != nil {
			return ctx.Fail(err)
		}
	}

	ctx.Log.Debug("offer applied",
		zap.String("account", m.Account),
		zap.Int("fills", len(fills)),
		zap.Bool("resting", rest != nil))
	ctx.Output = &Result{OffersClaimed: fills, Offer: rest}
	return tx.TesSUCCESS
}

// ownBalance loads a balance of the request's account.
func (m *ManageOffer) ownBalance(ctx *tx.ApplyContext, balanceID string) (*entry.Balance, tx.Result) {
	b, err := ctx.Store.LoadBalance(balanceID)
	if err != nil {
		return nil, ctx.Fail(err)
	}
	if b.AccountID != m.Account {
		return nil, tx.TecBALANCE_NOT_FOUND
	}
	return b, tx.TesSUCCESS
}

// applyFee resolves the offer's percent fee from configuration and checks
// the account accepts it.
func (m *ManageOffer) applyFee(ctx *tx.ApplyContext, o *entry.Offer, feeType fee.Type) tx.Result {
	acc, err := ctx.Store.LoadAccount(m.Account)
	if err != nil {
		return ctx.Fail(err)
	}
	f, err := ctx.LookupFee(fee.Query{
		Type:        feeType,
		Asset:       o.QuoteAsset,
		AccountID:   acc.AccountID,
		AccountType: acc.AccountType,
		Amount:      o.QuoteAmount,
	})
	if err != nil {
		return ctx.Fail(err)
	}
	required, err := fee.Calculate(o.QuoteAmount, f.Percent)
	if err != nil {
		return ctx.Fail(err)
	}
	if required > m.Fee {
		return tx.TecFEE_MISMATCH
	}
	o.PercentFee = f.Percent
	o.Fee = required
	o.FeeLimit = m.Fee
	return tx.TesSUCCESS
}

// placeParticipation reserves the sale capacity an offer needs and rests it
// in the sale book. Sale books are never crossed on placement; the owner's
// side only appears when the sale closes.
func (m *ManageOffer) placeParticipation(ctx *tx.ApplyContext, sale *entry.Sale, o *entry.Offer) tx.Result {
	qa, err := sale.QuoteAsset(o.QuoteAsset)
	if err != nil {
		return tx.TecORDER_BOOK_NOT_FOUND
	}
	if !sale.TryLockBaseAsset(o.BaseAmount) {
		return tx.TecSALE_CAP_EXCEEDED
	}
	current, ok := amount.SafeSum(qa.CurrentCap, o.QuoteAmount)
	if !ok {
		return tx.TecOVERFLOW
	}
	qa.CurrentCap = current

	raised, err := sale.RaisedInBase()
	if err != nil {
		return ctx.Fail(err)
	}
	hard, err := sale.HardCapInBase()
	if err != nil {
		return ctx.Fail(err)
	}
	if raised > hard {
		return tx.TecSALE_CAP_EXCEEDED
	}

	if err := ctx.StoreSale(sale); err != nil {
		return ctx.Fail(err)
	}
	if err := BookOf(ctx.Store, o).Place(o); err != nil {
		return ctx.Fail(err)
	}

	ctx.Log.Debug("sale participation placed",
		zap.Uint64("sale", sale.SaleID),
		zap.String("account", m.Account),
		zap.Int64("base", o.BaseAmount),
		zap.Int64("quote", o.QuoteAmount))
	ctx.Output = &Result{OffersClaimed: []FillRecord{}, Offer: o}
	return tx.TesSUCCESS
}

func (m *ManageOffer) applyDelete(ctx *tx.ApplyContext) tx.Result {
	store := ctx.Store
	o, err := store.LoadOffer(m.OrderBookID, m.OfferID)
	if err != nil {
		return ctx.Fail(err)
	}
	if o.OwnerID != m.Account {
		return tx.TecNOT_OFFER_OWNER
	}

	if err := Cancel(ctx, o); err != nil {
		return ctx.Fail(err)
	}

	if o.OrderBookID != entry.MarketOrderBook {
		sale, err := store.LoadSale(o.OrderBookID)
		if err != nil {
			// a sale book offer outliving its sale is a broken ledger
			return ctx.Fail(&tx.FatalError{Op: "cancel sale offer", Err: err})
		}
		if err := sale.UnlockBaseAsset(o.BaseAmount); err != nil {
			return ctx.Fail(err)
		}
		qa, err := sale.QuoteAsset(o.QuoteAsset)
		if err != nil {
			return ctx.Fail(&tx.FatalError{Op: "cancel sale offer", Err: err})
		}
		if qa.CurrentCap < o.QuoteAmount {
			return ctx.Fail(tx.Fatalf("cancel sale offer", "%w: %s cap %d below offer %d",
				entry.ErrNegativeCap, qa.QuoteAsset, qa.CurrentCap, o.QuoteAmount))
		}
		qa.CurrentCap -= o.QuoteAmount
		if err := ctx.StoreSale(sale); err != nil {
			return ctx.Fail(err)
		}
	}

	ctx.Output = &Result{OffersClaimed: []FillRecord{}}
	return tx.TesSUCCESS
}

// Cancel releases everything o holds locked and removes it from its book.
// Sale reservations are left to the caller.
func Cancel(ctx *tx.ApplyContext, o *entry.Offer) error {
	locked, ok := o.LockedAmount()
	if !ok {
		return tx.Fatalf("cancel offer", "offer %d lock overflows", o.OfferID)
	}
	if locked > 0 {
		if err := ctx.Store.UnlockBalance(o.LockedBalance(), locked); err != nil {
			return err
		}
	}
	return ctx.Store.DeleteOffer(o)
}
