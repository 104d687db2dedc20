package sale

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
	"github.com/LeJamon/goTokend/internal/core/tx"
	saletx "github.com/LeJamon/goTokend/internal/core/tx/sale"
	jtx "github.com/LeJamon/goTokend/internal/testing"
)

// TestCreateSale_Rejected checks the malformed and ledger failures of
// CreateSale.
func TestCreateSale_Rejected(t *testing.T) {
	env := NewSaleEnv(t)
	now := env.Now()

	tests := []struct {
		name string
		req  func() *saletx.CreateSale
		want tx.Result
	}{
		{
			name: "no account",
			req: func() *saletx.CreateSale {
				r := NewSale(env).Build()
				r.Account = ""
				return r
			},
			want: tx.TemBAD_SOURCE,
		},
		{
			name: "end before start",
			req:  func() *saletx.CreateSale { return NewSale(env).Times(now.Add(time.Hour), now).Build() },
			want: tx.TemSALE_BAD_TIMES,
		},
		{
			name: "soft above hard",
			req:  func() *saletx.CreateSale { return NewSale(env).Caps(u(300), u(200)).Build() },
			want: tx.TemSALE_BAD_CAPS,
		},
		{
			name: "nothing for sale",
			req:  func() *saletx.CreateSale { return NewSale(env).Max(0).Build() },
			want: tx.TemSALE_BAD_CAPS,
		},
		{
			name: "no quote assets",
			req:  func() *saletx.CreateSale { return NewSale(env).Quotes().Build() },
			want: tx.TemSALE_NO_QUOTE_ASSETS,
		},
		{
			name: "zero quote price",
			req: func() *saletx.CreateSale {
				return NewSale(env).Quotes(saletx.QuotePrice{Asset: USD}).Build()
			},
			want: tx.TemBAD_PRICE,
		},
		{
			name: "details not json",
			req:  func() *saletx.CreateSale { return NewSale(env).Details("{name").Build() },
			want: tx.TemSALE_BAD_DETAILS,
		},
		{
			name: "unknown type",
			req:  func() *saletx.CreateSale { return NewSale(env).Type("auction").Build() },
			want: tx.TemSALE_BAD_TYPE,
		},
		{
			name: "not the owner",
			req: func() *saletx.CreateSale {
				r := NewSale(env).Build()
				r.Account = Issuer
				return r
			},
			want: tx.TecNOT_ASSET_OWNER,
		},
		{
			name: "unknown quote asset",
			req: func() *saletx.CreateSale {
				return NewSale(env).Quotes(
					saletx.QuotePrice{Asset: USD, Price: u(1)},
					saletx.QuotePrice{Asset: "GBP", Price: u(1)},
				).Build()
			},
			want: tx.TecASSET_NOT_FOUND,
		},
		{
			name: "beyond available issuance",
			req: func() *saletx.CreateSale {
				return NewSale(env).Caps(u(100), u(200)).Max(u(2_000_000)).Build()
			},
			want: tx.TecINSUFFICIENT_ISSUANCE,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jtx.RequireTxFail(t, env.Submit(tt.req()), tt.want)
		})
	}

	assert.Empty(t, env.SaleIDs())
	a := env.Asset(Base)
	assert.Zero(t, a.PendingIssuance)
	assert.Equal(t, u(1_000_000), a.AvailableForIssuance)
}

// TestCreateSale_Versions checks that a sale is stored at the ledger's
// sale version and that newer features are refused on older ledgers.
func TestCreateSale_Versions(t *testing.T) {
	t.Run("latest", func(t *testing.T) {
		env := NewSaleEnv(t)
		id := CreateSale(t, env, NewSale(env).Type("fixed_price").State("voting").Build())
		s := env.Sale(id)
		require.NotNil(t, s)
		assert.Equal(t, entry.LatestSaleVersion, s.Version)
		assert.Equal(t, entry.SaleTypeFixedPrice, s.Type())
		assert.Equal(t, entry.SaleStateVoting, s.GetState())
	})

	t.Run("empty", func(t *testing.T) {
		env := NewSaleEnv(t, jtx.WithSaleVersion(entry.SaleVersionEmpty))
		jtx.RequireTxFail(t, env.Submit(NewSale(env).Type("crowd_funding").Build()), tx.TemSALE_BAD_TYPE)

		id := CreateSale(t, env, NewSale(env).Build())
		s := env.Sale(id)
		assert.Equal(t, entry.SaleVersionEmpty, s.Version)
		assert.Equal(t, entry.SaleTypeBasic, s.Type())
	})

	t.Run("typed", func(t *testing.T) {
		env := NewSaleEnv(t, jtx.WithSaleVersion(entry.SaleVersionTypedSale))
		jtx.RequireTxFail(t, env.Submit(NewSale(env).State("promotion").Build()), tx.TemSALE_BAD_TYPE)

		id := CreateSale(t, env, NewSale(env).Type("crowd_funding").Build())
		s := env.Sale(id)
		assert.Equal(t, entry.SaleVersionTypedSale, s.Version)
		assert.True(t, s.IsCrowdFunding())
	})
}

// TestCreateSale_IDsIncrease checks that every sale gets a fresh id.
func TestCreateSale_IDsIncrease(t *testing.T) {
	env := NewSaleEnv(t)
	first := CreateSale(t, env, NewSale(env).Build())
	second := CreateSale(t, env, NewSale(env).Build())
	assert.Greater(t, second, first)
	assert.Equal(t, []uint64{first, second}, env.SaleIDs())
	assert.Equal(t, u(400), env.Asset(Base).PendingIssuance)
}
