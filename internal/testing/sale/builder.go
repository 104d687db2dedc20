// Package sale holds the sale lifecycle integration tests.
package sale

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
	saletx "github.com/LeJamon/goTokend/internal/core/tx/sale"
	jtx "github.com/LeJamon/goTokend/internal/testing"
	"github.com/LeJamon/goTokend/internal/testing/offer"
)

// Accounts and assets of the sale environment.
const (
	Owner  = "owner"
	Issuer = offer.Issuer
	Base   = offer.BaseAsset
	USD    = offer.QuoteAsset
	EUR    = "EUR"
)

// CreateSaleBuilder provides a fluent interface for building CreateSale
// requests.
type CreateSaleBuilder struct {
	req saletx.CreateSale
}

// NewSale starts a basic sale of TKN by Owner for USD at price 1, open for
// an hour from now.
func NewSale(env *jtx.TestEnv) *CreateSaleBuilder {
	now := env.Now()
	return &CreateSaleBuilder{req: saletx.CreateSale{
		Account:           Owner,
		BaseAsset:         Base,
		DefaultQuoteAsset: USD,
		StartTime:         now.Unix(),
		EndTime:           now.Add(time.Hour).Unix(),
		SoftCap:           jtx.Units(100),
		HardCap:           jtx.Units(200),
		MaxAmountToBeSold: jtx.Units(200),
		QuoteAssets:       []saletx.QuotePrice{{Asset: USD, Price: jtx.Units(1)}},
	}}
}

// Caps sets the soft and hard caps, in the default quote asset.
func (b *CreateSaleBuilder) Caps(soft, hard int64) *CreateSaleBuilder {
	b.req.SoftCap, b.req.HardCap = soft, hard
	return b
}

// Max sets the amount of base asset for sale.
func (b *CreateSaleBuilder) Max(m int64) *CreateSaleBuilder {
	b.req.MaxAmountToBeSold = m
	return b
}

// Times sets the start and end times.
func (b *CreateSaleBuilder) Times(start, end time.Time) *CreateSaleBuilder {
	b.req.StartTime, b.req.EndTime = start.Unix(), end.Unix()
	return b
}

// Quotes replaces the accepted quote assets.
func (b *CreateSaleBuilder) Quotes(q ...saletx.QuotePrice) *CreateSaleBuilder {
	b.req.QuoteAssets = q
	return b
}

// Type sets the sale type by name.
func (b *CreateSaleBuilder) Type(name string) *CreateSaleBuilder {
	b.req.SaleType = name
	return b
}

// State sets the sale state by name.
func (b *CreateSaleBuilder) State(name string) *CreateSaleBuilder {
	b.req.State = name
	return b
}

// Details sets the sale details document.
func (b *CreateSaleBuilder) Details(d string) *CreateSaleBuilder {
	b.req.Details = d
	return b
}

// Build returns the request.
func (b *CreateSaleBuilder) Build() *saletx.CreateSale {
	req := b.req
	return &req
}

// NewSaleEnv creates a test environment with Owner owning TKN, which
// requires KYC, and the verified participants alice, bob and carol each
// holding 10,000 USD and EUR. dave is not verified.
func NewSaleEnv(t *testing.T, opts ...jtx.EnvOption) *jtx.TestEnv {
	t.Helper()
	env := jtx.NewTestEnv(t, opts...)
	env.CreateAccount(Owner, entry.AccountSyndicate)
	env.CreateAccount(Issuer, entry.AccountMaster)
	env.CreateAccounts("alice", "bob", "carol")
	env.CreateAccount("dave", entry.AccountNotVerified)

	env.CreateAsset(Base, Owner, jtx.Units(1_000_000), entry.AssetPolicyRequiresKYC)
	env.CreateAsset(USD, Issuer, jtx.Units(1_000_000), entry.AssetPolicyBaseAsset)
	env.CreateAsset(EUR, Issuer, jtx.Units(1_000_000), entry.AssetPolicyBaseAsset)
	for _, a := range []string{"alice", "bob", "carol", "dave"} {
		env.Fund(a, USD, jtx.Units(10_000))
		env.Fund(a, EUR, jtx.Units(10_000))
	}
	return env
}

// CreateSale submits req and returns the new sale id.
func CreateSale(t *testing.T, env *jtx.TestEnv, req *saletx.CreateSale) uint64 {
	t.Helper()
	res := env.Submit(req)
	jtx.RequireTxSuccess(t, res)
	out, ok := res.Output.(*saletx.CreateSaleResult)
	require.True(t, ok)
	require.NotZero(t, out.SaleID)
	return out.SaleID
}

// Participate places a buy of amt TKN at price in the sale's USD book.
func Participate(env *jtx.TestEnv, saleID uint64, account string, amt, price int64) jtx.TxResult {
	return env.Submit(offer.Buy(env, account, amt, price).Book(saleID).Build())
}

// Check submits CheckSaleState for the sale.
func Check(env *jtx.TestEnv, saleID uint64) jtx.TxResult {
	return env.Submit(saletx.NewCheckSaleState(saleID))
}

// RequireEffect asserts that a CheckSaleState succeeded with effect and
// returns its response.
func RequireEffect(t *testing.T, res jtx.TxResult, effect saletx.Effect) *saletx.CheckSaleStateResult {
	t.Helper()
	jtx.RequireTxSuccess(t, res)
	out, ok := res.Output.(*saletx.CheckSaleStateResult)
	require.True(t, ok)
	require.Equal(t, effect, out.Effect, "Expected sale to be %s, got %s", effect, out.Effect)
	return out
}
