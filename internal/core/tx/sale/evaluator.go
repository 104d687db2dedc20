package sale

import (
	"go.uber.org/zap"

	"github.com/LeJamon/goTokend/internal/core/amount"
	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
	"github.com/LeJamon/goTokend/internal/core/tx"
	"github.com/LeJamon/goTokend/internal/core/tx/offer"
)

// Evaluator decides the state of a sale at the request's close time and
// carries out the resulting transition.
type Evaluator struct {
	ctx *tx.ApplyContext
}

// NewEvaluator returns an evaluator working inside one request.
func NewEvaluator(ctx *tx.ApplyContext) *Evaluator {
	return &Evaluator{ctx: ctx}
}

// Decide returns the transition sale is due for at now, given the amount
// raised in base units. It returns EffectUpdated when the sale stays open.
func Decide(sale *entry.Sale, now, raised int64) (Effect, error) {
	soft, err := sale.SoftCapInBase()
	if err != nil {
		return 0, err
	}
	hard, err := sale.HardCapInBase()
	if err != nil {
		return 0, err
	}
	ended := now >= sale.EndTime
	switch {
	case ended && raised < soft:
		return EffectCanceled, nil
	case ended, raised >= hard, reservationFull(sale):
		return EffectClosed, nil
	}
	return EffectUpdated, nil
}

func reservationFull(sale *entry.Sale) bool {
	return !sale.IsCrowdFunding() && sale.CurrentCapInBase >= sale.MaxAmountToBeSold
}

// Evaluate loads the sale and applies its transition. A sale that stays
// open and whose raised amount did not move since the last evaluation
// yields TecSALE_NOT_READY.
func (ev *Evaluator) Evaluate(saleID uint64) (*CheckSaleStateResult, tx.Result) {
	ctx := ev.ctx
	sale, err := ctx.Store.LoadSale(saleID)
	if err != nil {
		return nil, ctx.Fail(err)
	}
	raised, err := sale.RaisedInBase()
	if err != nil {
		return nil, ctx.Fail(err)
	}
	effect, err := Decide(sale, ctx.CloseTime, raised)
	if err != nil {
		return nil, ctx.Fail(err)
	}

	out := &CheckSaleStateResult{Effect: effect, SaleID: saleID}
	switch effect {
	case EffectCanceled:
		err = ev.cancel(sale, out)
	case EffectClosed:
		err = ev.close(sale, out)
	default:
		if raised == sale.LastCheckedCapInBase {
			return nil, tx.TecSALE_NOT_READY
		}
		sale.LastCheckedCapInBase = raised
		err = ctx.StoreSale(sale)
		for _, qa := range sale.QuoteAssets {
			out.QuoteAssetResults = append(out.QuoteAssetResults, QuoteAssetResult{
				QuoteAsset: qa.QuoteAsset,
				CurrentCap: qa.CurrentCap,
			})
		}
	}
	if err != nil {
		return nil, ctx.Fail(err)
	}

	ctx.Log.Info("sale evaluated",
		zap.Uint64("sale", saleID),
		zap.Stringer("effect", effect),
		zap.Int64("raised", raised))
	return out, tx.TesSUCCESS
}

// participations loads every offer resting in the sale's books, per quote
// asset in sale order, and the locks they hold per balance.
func (ev *Evaluator) participations(sale *entry.Sale) ([][]*entry.Offer, map[string]int64, error) {
	books := make([][]*entry.Offer, len(sale.QuoteAssets))
	locked := make(map[string]int64)
	for i, qa := range sale.QuoteAssets {
		book := offer.NewOrderBook(ev.ctx.Store, sale.SaleID, sale.BaseAsset, qa.QuoteAsset)
		sells, err := book.Offers(false, 1, 0)
		if err != nil {
			return nil, nil, err
		}
		if len(sells) > 0 {
			return nil, nil, tx.Fatalf("load participations", "sale %d has a sell offer %d", sale.SaleID, sells[0].OfferID)
		}
		offers, err := book.Offers(true, 0, 0)
		if err != nil {
			return nil, nil, err
		}
		for _, o := range offers {
			l, ok := o.LockedAmount()
			if !ok {
				return nil, nil, amount.ErrOverflow
			}
			locked[o.LockedBalance()] += l
		}
		books[i] = offers
	}
	return books, locked, nil
}

// verifyLocks checks that the request released, through fills or unlocks,
// exactly what the sale's participations held locked and nothing else.
func (ev *Evaluator) verifyLocks(saleID uint64, locked map[string]int64) error {
	journal := ev.ctx.Store.Locks()
	for _, id := range journal.Balances() {
		if _, ok := locked[id]; !ok {
			return tx.Fatalf("verify locks", "sale %d moved %d on unrelated balance %s", saleID, journal.Net(id), id)
		}
	}
	for id, want := range locked {
		if got := journal.Net(id); got != -want {
			return tx.Fatalf("verify locks", "sale %d balance %s released %d, held %d", saleID, id, -got, want)
		}
	}
	return nil
}

// cancel returns every participation and the issuance reservation, then
// removes the sale.
func (ev *Evaluator) cancel(sale *entry.Sale, out *CheckSaleStateResult) error {
	books, locked, err := ev.participations(sale)
	if err != nil {
		return err
	}
	for i, qa := range sale.QuoteAssets {
		for _, o := range books[i] {
			if err := offer.Cancel(ev.ctx, o); err != nil {
				return err
			}
		}
		out.QuoteAssetResults = append(out.QuoteAssetResults, QuoteAssetResult{
			QuoteAsset: qa.QuoteAsset,
			CurrentCap: qa.CurrentCap,
			Refunded:   len(books[i]),
		})
	}
	if err := ev.ctx.Store.ReleasePending(sale.BaseAsset, sale.MaxAmountToBeSold); err != nil {
		return err
	}
	if err := ev.verifyLocks(sale.SaleID, locked); err != nil {
		return err
	}
	return ev.ctx.Store.DeleteSale(sale.SaleID)
}
