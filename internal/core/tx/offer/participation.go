package offer

import (
	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
	"github.com/LeJamon/goTokend/internal/core/tx"
)

// checkParticipation checks that o may take part in sale at ctx.CloseTime.
func checkParticipation(ctx *tx.ApplyContext, sale *entry.Sale, o *entry.Offer) tx.Result {
	if o.BaseAsset != sale.BaseAsset {
		return tx.TecORDER_BOOK_NOT_FOUND
	}
	qa, err := sale.QuoteAsset(o.QuoteAsset)
	if err != nil {
		return tx.TecORDER_BOOK_NOT_FOUND
	}
	if !o.IsBuy {
		return tx.TecSALE_SELL_FORBIDDEN
	}
	if o.OwnerID == sale.OwnerID {
		return tx.TecCANT_PARTICIPATE_OWN_SALE
	}

	asset, err := ctx.Store.LoadAsset(sale.BaseAsset)
	if err != nil {
		return ctx.Fail(err)
	}
	if asset.RequiresKYC() {
		acc, err := ctx.Store.LoadAccount(o.OwnerID)
		if err != nil {
			return ctx.Fail(err)
		}
		if !acc.IsVerified() {
			return tx.TecREQUIRES_KYC
		}
	}

	switch sale.GetState() {
	case entry.SaleStatePromotion, entry.SaleStateVoting:
		return tx.TecSALE_NOT_STARTED
	}
	if ctx.CloseTime < sale.StartTime {
		return tx.TecSALE_NOT_STARTED
	}
	if ctx.CloseTime >= sale.EndTime {
		return tx.TecSALE_ENDED
	}

	if o.Price != qa.Price {
		return tx.TecPRICE_MISMATCH
	}
	return tx.TesSUCCESS
}
