package sale

import (
	"go.uber.org/zap"

	"github.com/LeJamon/goTokend/internal/core/amount"
	"github.com/LeJamon/goTokend/internal/core/fee"
	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
	"github.com/LeJamon/goTokend/internal/core/tx"
	"github.com/LeJamon/goTokend/internal/core/tx/offer"
)

// close settles every participation at its resting price, pays the owner
// net of its invest fee, issues the sold base asset and releases the rest
// of the reservation, then removes the sale.
func (ev *Evaluator) close(sale *entry.Sale, out *CheckSaleStateResult) error {
	ctx := ev.ctx
	store := ctx.Store

	books, locked, err := ev.participations(sale)
	if err != nil {
		return err
	}
	if sale.IsCrowdFunding() {
		if err := ev.distribute(sale, books); err != nil {
			return err
		}
	}

	owner, err := store.LoadAccount(sale.OwnerID)
	if err != nil {
		return &tx.FatalError{Op: "close sale", Err: err}
	}

	var sold int64
	for i := range sale.QuoteAssets {
		qa := &sale.QuoteAssets[i]
		res, err := ev.settleQuoteAsset(sale, qa, owner, books[i])
		if err != nil {
			return err
		}
		var ok bool
		if sold, ok = amount.SafeSum(sold, res.BaseAmount); !ok {
			return amount.ErrOverflow
		}
		out.QuoteAssetResults = append(out.QuoteAssetResults, res)
	}

	if !sale.IsCrowdFunding() && sold != sale.CurrentCapInBase {
		return tx.Fatalf("close sale", "sale %d sold %d, reserved %d", sale.SaleID, sold, sale.CurrentCapInBase)
	}
	if sold > sale.MaxAmountToBeSold {
		return tx.Fatalf("close sale", "sale %d sold %d above max %d", sale.SaleID, sold, sale.MaxAmountToBeSold)
	}
	if unsold := sale.MaxAmountToBeSold - sold; unsold > 0 {
		if err := store.ReleasePending(sale.BaseAsset, unsold); err != nil {
			return err
		}
	}
	if err := ev.verifyLocks(sale.SaleID, locked); err != nil {
		return err
	}

	ctx.Log.Info("sale closed",
		zap.Uint64("sale", sale.SaleID),
		zap.Int64("sold", sold),
		zap.Int64("max", sale.MaxAmountToBeSold))
	return store.DeleteSale(sale.SaleID)
}

// settleQuoteAsset issues the base asset the participations of one quote
// asset bought to the owner and sells it to them through the sale book.
func (ev *Evaluator) settleQuoteAsset(sale *entry.Sale, qa *entry.SaleQuoteAsset, owner *entry.Account, offers []*entry.Offer) (QuoteAssetResult, error) {
	ctx := ev.ctx
	store := ctx.Store
	res := QuoteAssetResult{QuoteAsset: qa.QuoteAsset, CurrentCap: qa.CurrentCap}

	var base int64
	for _, o := range offers {
		var ok bool
		if base, ok = amount.SafeSum(base, o.BaseAmount); !ok {
			return res, amount.ErrOverflow
		}
	}
	if base == 0 {
		if qa.CurrentCap != 0 {
			return res, tx.Fatalf("settle sale", "sale %d raised %d %s without offers", sale.SaleID, qa.CurrentCap, qa.QuoteAsset)
		}
		return res, nil
	}

	if err := store.IssueFromPending(sale.BaseAsset, base); err != nil {
		return res, err
	}
	if err := store.CreditBalance(sale.BaseBalance, base); err != nil {
		return res, err
	}
	if err := store.LockBalance(sale.BaseBalance, base); err != nil {
		return res, err
	}

	// crowdfunding participations rest at individual prices after
	// distribution; the lowest price crosses all of them
	price := qa.Price
	if sale.IsCrowdFunding() {
		price = 1
	}
	quote, ok := amount.QuoteAmount(base, price)
	if !ok {
		return res, amount.ErrOverflow
	}
	ask := &entry.Offer{
		OwnerID:      sale.OwnerID,
		OrderBookID:  sale.SaleID,
		BaseAsset:    sale.BaseAsset,
		QuoteAsset:   qa.QuoteAsset,
		BaseBalance:  sale.BaseBalance,
		QuoteBalance: qa.QuoteBalance,
		BaseAmount:   base,
		QuoteAmount:  quote,
		Price:        price,
		CreatedAt:    ctx.CloseTime,
	}
	fills, rest, err := offer.NewExchange(ctx).Match(ask)
	if err != nil {
		return res, err
	}
	if rest != nil {
		return res, tx.Fatalf("settle sale", "sale %d left %d %s unsold", sale.SaleID, rest.BaseAmount, sale.BaseAsset)
	}

	var proceeds int64
	for _, f := range fills {
		if proceeds, ok = amount.SafeSum(proceeds, f.QuoteAmount); !ok {
			return res, amount.ErrOverflow
		}
	}
	if proceeds != qa.CurrentCap {
		return res, tx.Fatalf("settle sale", "sale %d %s proceeds %d, raised %d", sale.SaleID, qa.QuoteAsset, proceeds, qa.CurrentCap)
	}

	ownerFee, err := ev.ownerFee(owner, qa.QuoteAsset, proceeds)
	if err != nil {
		return res, err
	}
	if ownerFee > 0 {
		if err := store.DebitBalance(qa.QuoteBalance, ownerFee); err != nil {
			return res, err
		}
		commission, err := ctx.CommissionBalance(qa.QuoteAsset)
		if err != nil {
			return res, err
		}
		if err := store.CreditBalance(commission, ownerFee); err != nil {
			return res, err
		}
	}

	res.BaseAmount = base
	res.OwnerProceeds = proceeds
	res.OwnerFee = ownerFee
	res.Fills = fills
	return res, nil
}

// ownerFee is the owner's invest fee on proceeds, never more than proceeds.
func (ev *Evaluator) ownerFee(owner *entry.Account, asset string, proceeds int64) (int64, error) {
	f, err := ev.ctx.LookupFee(fee.Query{
		Type:        fee.InvestFee,
		Asset:       asset,
		AccountID:   owner.AccountID,
		AccountType: owner.AccountType,
		Amount:      proceeds,
	})
	if err != nil {
		return 0, err
	}
	due, err := f.For(proceeds)
	if err != nil {
		return 0, err
	}
	return min(due, proceeds), nil
}

// distribute rescales crowdfunding participations so that the whole
// MaxAmountToBeSold is shared in proportion to what each one paid. Each
// participation keeps its quote amount and fee; its price becomes what it
// effectively pays per base unit. Participations too small to receive any
// base asset are refunded.
func (ev *Evaluator) distribute(sale *entry.Sale, books [][]*entry.Offer) error {
	var total int64
	for _, offers := range books {
		for _, o := range offers {
			var ok bool
			if total, ok = amount.SafeSum(total, o.BaseAmount); !ok {
				return amount.ErrOverflow
			}
		}
	}
	if total == 0 {
		return nil
	}

	for i, offers := range books {
		qa := &sale.QuoteAssets[i]
		book := offer.NewOrderBook(ev.ctx.Store, sale.SaleID, sale.BaseAsset, qa.QuoteAsset)
		kept := offers[:0]
		for _, o := range offers {
			share, ok := amount.BigDivide(o.BaseAmount, sale.MaxAmountToBeSold, total, amount.RoundDown)
			if !ok {
				return amount.ErrOverflow
			}
			if share == 0 {
				if err := offer.Cancel(ev.ctx, o); err != nil {
					return err
				}
				qa.CurrentCap -= o.QuoteAmount
				continue
			}
			price, ok := amount.BigDivide(o.QuoteAmount, amount.ONE, share, amount.RoundUp)
			if !ok {
				return amount.ErrOverflow
			}
			if err := book.Reprice(o, share, price); err != nil {
				return err
			}
			kept = append(kept, o)
		}
		books[i] = kept
	}
	return nil
}
