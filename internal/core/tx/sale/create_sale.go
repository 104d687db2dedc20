package sale

import (
	"errors"

	"go.uber.org/zap"

	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
	"github.com/LeJamon/goTokend/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeCreateSale, func() tx.Request {
		return &CreateSale{}
	})
}

// QuotePrice is a quote asset a sale accepts and its fixed price.
type QuotePrice struct {
	Asset string `json:"Asset"`
	Price int64  `json:"Price"`
}

// CreateSale opens an approved sale of an asset its owner issues. The
// maximum amount to be sold is reserved from the asset's issuance until the
// sale is settled.
type CreateSale struct {
	// Account is the sale owner and must own BaseAsset
	Account string `json:"Account"`

	BaseAsset         string `json:"BaseAsset"`
	DefaultQuoteAsset string `json:"DefaultQuoteAsset"`

	StartTime int64 `json:"StartTime"`
	EndTime   int64 `json:"EndTime"`

	// SoftCap and HardCap are in DefaultQuoteAsset
	SoftCap int64 `json:"SoftCap"`
	HardCap int64 `json:"HardCap"`

	MaxAmountToBeSold int64 `json:"MaxAmountToBeSold"`

	QuoteAssets []QuotePrice `json:"QuoteAssets"`

	SaleType string `json:"SaleType,omitempty"`
	State    string `json:"State,omitempty"`
	Details  string `json:"Details,omitempty"`
}

// CreateSaleResult is the CreateSale response.
type CreateSaleResult struct {
	SaleID uint64 `json:"SaleID"`
}

func (c *CreateSale) RequestType() tx.Type { return tx.TypeCreateSale }

func (c *CreateSale) Source() string { return c.Account }

// sale builds the sale entry described by the request, without ids or
// balances.
func (c *CreateSale) sale() (*entry.Sale, error) {
	saleType, err := entry.ParseSaleType(c.SaleType)
	if err != nil {
		return nil, err
	}
	state, err := entry.ParseSaleState(c.State)
	if err != nil {
		return nil, err
	}
	s := &entry.Sale{
		OwnerID:           c.Account,
		BaseAsset:         c.BaseAsset,
		DefaultQuoteAsset: c.DefaultQuoteAsset,
		StartTime:         c.StartTime,
		EndTime:           c.EndTime,
		SoftCap:           c.SoftCap,
		HardCap:           c.HardCap,
		MaxAmountToBeSold: c.MaxAmountToBeSold,
		Details:           c.Details,
		SaleType:          saleType,
		State:             state,
	}
	for _, qp := range c.QuoteAssets {
		s.QuoteAssets = append(s.QuoteAssets, entry.SaleQuoteAsset{QuoteAsset: qp.Asset, Price: qp.Price})
	}
	s.Normalize()
	return s, nil
}

// Preflight validates the request on its own.
func (c *CreateSale) Preflight() tx.Result {
	if c.Account == "" {
		return tx.TemBAD_SOURCE
	}
	if c.MaxAmountToBeSold <= 0 {
		return tx.TemSALE_BAD_CAPS
	}
	s, err := c.sale()
	if err != nil {
		return tx.TemSALE_BAD_TYPE
	}
	switch err := s.EnsureValid(); {
	case err == nil:
		return tx.TesSUCCESS
	case errors.Is(err, entry.ErrInvalidSaleTime):
		return tx.TemSALE_BAD_TIMES
	case errors.Is(err, entry.ErrInvalidSaleCaps), errors.Is(err, entry.ErrCapExceedsMax):
		return tx.TemSALE_BAD_CAPS
	case errors.Is(err, entry.ErrNoQuoteAssets):
		return tx.TemSALE_NO_QUOTE_ASSETS
	case errors.Is(err, entry.ErrInvalidQuotePrice):
		return tx.TemBAD_PRICE
	case errors.Is(err, entry.ErrInvalidDetails):
		return tx.TemSALE_BAD_DETAILS
	default:
		return tx.TemBAD_ASSET
	}
}

// Apply runs the request against the ledger.
func (c *CreateSale) Apply(ctx *tx.ApplyContext) tx.Result {
	store := ctx.Store
	s, err := c.sale()
	if err != nil {
		return tx.TemSALE_BAD_TYPE
	}

	asset, err := store.LoadAsset(s.BaseAsset)
	if err != nil {
		return ctx.Fail(err)
	}
	if asset.OwnerID != c.Account {
		return tx.TecNOT_ASSET_OWNER
	}
	for _, qa := range s.QuoteAssets {
		if _, err := store.LoadAsset(qa.QuoteAsset); err != nil {
			return ctx.Fail(err)
		}
	}

	// the stored entry only carries what its version knows about
	target := ctx.Config.SaleVersion
	if target < entry.SaleVersionTypedSale && s.SaleType != entry.SaleTypeBasic {
		return tx.TemSALE_BAD_TYPE
	}
	if target < entry.SaleVersionStatableSales && s.State != entry.SaleStateNone {
		return tx.TemSALE_BAD_TYPE
	}
	saleType, state := s.SaleType, s.State
	s.SaleType, s.State = 0, entry.SaleStateNone
	if err := s.MigrateTo(target); err != nil {
		return ctx.Fail(err)
	}
	if target >= entry.SaleVersionTypedSale {
		s.SaleType = saleType
	}
	if target >= entry.SaleVersionStatableSales {
		s.State = state
	}

	if err := store.LockIssuance(s.BaseAsset, s.MaxAmountToBeSold); err != nil {
		return ctx.Fail(err)
	}

	baseBalance, err := store.LoadOrCreateBalance(c.Account, s.BaseAsset)
	if err != nil {
		return ctx.Fail(err)
	}
	s.BaseBalance = baseBalance.BalanceID
	for i := range s.QuoteAssets {
		b, err := store.LoadOrCreateBalance(c.Account, s.QuoteAssets[i].QuoteAsset)
		if err != nil {
			return ctx.Fail(err)
		}
		s.QuoteAssets[i].QuoteBalance = b.BalanceID
	}

	id, err := store.NextID(entry.IDSale)
	if err != nil {
		return ctx.Fail(err)
	}
	s.SaleID = id
	if err := store.InsertSale(s); err != nil {
		return ctx.Fail(err)
	}

	ctx.Log.Info("sale created",
		zap.Uint64("sale", id),
		zap.String("owner", c.Account),
		zap.String("base", s.BaseAsset),
		zap.Stringer("type", s.Type()),
		zap.Int64("max", s.MaxAmountToBeSold))
	ctx.Output = &CreateSaleResult{SaleID: id}
	return tx.TesSUCCESS
}
