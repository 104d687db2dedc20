package tx

import (
	"go.uber.org/zap"

	"github.com/LeJamon/goTokend/internal/core/fee"
	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
)

// ApplyContext provides all the state and helpers needed to apply a request.
// It lives for exactly one Engine.Apply call.
type ApplyContext struct {
	// Store provides typed read/write access to the request's ApplyStateTable
	Store *LedgerStore

	// Config holds engine configuration
	Config EngineConfig

	// Fees resolves configured fees
	Fees fee.Lookup

	// Log is scoped to the request
	Log *zap.Logger

	// CloseTime is the ledger time the request is applied at, in unix seconds
	CloseTime int64

	// Output is the request specific response, set by the handler
	Output any

	abort error
}

// Fail converts err into the request result. Broken invariants and storage
// failures are remembered so the engine aborts the request and reports them.
func (ctx *ApplyContext) Fail(err error) Result {
	res, abort := Classify(err)
	if abort != nil && ctx.abort == nil {
		ctx.abort = abort
	}
	return res
}

// Err returns the error that aborted the request, if any.
func (ctx *ApplyContext) Err() error {
	return ctx.abort
}

// LookupFee resolves the fee for q.
func (ctx *ApplyContext) LookupFee(q fee.Query) (fee.Fee, error) {
	if ctx.Fees == nil {
		return fee.Fee{}, nil
	}
	return ctx.Fees.Lookup(q)
}

// StoreSale writes back a sale, first migrating it to the configured sale
// version if it is older.
func (ctx *ApplyContext) StoreSale(s *entry.Sale) error {
	if s.Version < ctx.Config.SaleVersion {
		if err := s.MigrateTo(ctx.Config.SaleVersion); err != nil {
			return err
		}
	}
	return ctx.Store.StoreSale(s)
}

// CommissionBalance returns the commission account's balance in asset,
// creating it on first use.
func (ctx *ApplyContext) CommissionBalance(asset string) (string, error) {
	b, err := ctx.Store.LoadOrCreateBalance(ctx.Config.CommissionAccount, asset)
	if err != nil {
		return "", err
	}
	return b.BalanceID, nil
}
