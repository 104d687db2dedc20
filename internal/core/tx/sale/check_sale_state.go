// Package sale implements sale creation and the sale lifecycle: deciding
// when a sale is canceled or closed and settling it.
package sale

import (
	"github.com/LeJamon/goTokend/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeCheckSaleState, func() tx.Request {
		return &CheckSaleState{}
	})
}

// CheckSaleState evaluates a sale and cancels, closes or updates it. It is
// issued by the node itself and has no source account.
type CheckSaleState struct {
	SaleID uint64 `json:"SaleID"`
}

// NewCheckSaleState creates a request evaluating saleID.
func NewCheckSaleState(saleID uint64) *CheckSaleState {
	return &CheckSaleState{SaleID: saleID}
}

func (c *CheckSaleState) RequestType() tx.Type { return tx.TypeCheckSaleState }

func (c *CheckSaleState) Source() string { return "" }

func (c *CheckSaleState) Preflight() tx.Result {
	if c.SaleID == 0 {
		return tx.TemMALFORMED
	}
	return tx.TesSUCCESS
}

func (c *CheckSaleState) Apply(ctx *tx.ApplyContext) tx.Result {
	out, res := NewEvaluator(ctx).Evaluate(c.SaleID)
	if out != nil {
		ctx.Output = out
	}
	return res
}
