package offer

import (
	"math"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/LeJamon/goTokend/internal/core/fee"
	"github.com/LeJamon/goTokend/internal/core/fee/feemock"
	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
	"github.com/LeJamon/goTokend/internal/core/tx"
	offertx "github.com/LeJamon/goTokend/internal/core/tx/offer"
	jtx "github.com/LeJamon/goTokend/internal/testing"
)

// TestOffer_SelfCross checks that an offer crossing its owner's resting
// offer is rejected and leaves the book as it was.
func TestOffer_SelfCross(t *testing.T) {
	env := NewMarket(t)
	env.Fund("alice", BaseAsset, u(10))
	env.Fund("alice", QuoteAsset, u(100))

	ask := RequireResting(t, env.Submit(Sell(env, "alice", u(10), u(2)).Build()), u(10))

	jtx.RequireTxFail(t, env.Submit(Buy(env, "alice", u(10), u(3)).Build()), tx.TecCROSS_SELF)
	jtx.RequireLocked(t, env, "alice", QuoteAsset, 0)
	jtx.RequireBalance(t, env, "alice", QuoteAsset, u(100))
	assert.NotNil(t, env.Offer(0, ask))

	// a bid below the ask does not cross and may rest
	RequireResting(t, env.Submit(Buy(env, "alice", u(10), u(1)).Build()), u(10))
}

// TestOffer_LedgerRejections checks the failures that depend on ledger
// state rather than the request alone.
func TestOffer_LedgerRejections(t *testing.T) {
	env := NewMarket(t)
	env.CreateAsset("EUR", Issuer, u(1000), 0)
	env.CreateAsset("GBP", Issuer, u(1000), 0)
	env.CreateAssetPair(BaseAsset, "GBP", u(1), false)
	env.Fund("alice", BaseAsset, u(10))
	env.CreateAccounts("mallory")
	env.BlockAccount("mallory")

	tests := []struct {
		name string
		req  func() *offertx.ManageOffer
		want tx.Result
	}{
		{
			name: "no asset pair",
			req:  func() *offertx.ManageOffer { return Sell(env, "alice", u(1), u(1)).Pair(BaseAsset, "EUR").Build() },
			want: tx.TecORDER_BOOK_NOT_FOUND,
		},
		{
			name: "pair not tradable",
			req:  func() *offertx.ManageOffer { return Sell(env, "alice", u(1), u(1)).Pair(BaseAsset, "GBP").Build() },
			want: tx.TecASSET_PAIR_NOT_TRADABLE,
		},
		{
			name: "underfunded sell",
			req:  func() *offertx.ManageOffer { return Sell(env, "alice", u(11), u(1)).Build() },
			want: tx.TecUNDERFUNDED,
		},
		{
			name: "underfunded buy",
			req:  func() *offertx.ManageOffer { return Buy(env, "bob", u(1), u(1)).Build() },
			want: tx.TecUNDERFUNDED,
		},
		{
			name: "balance of another account",
			req: func() *offertx.ManageOffer {
				m := Sell(env, "alice", u(1), u(1)).Build()
				m.QuoteBalance = env.BalanceID("bob", QuoteAsset)
				return m
			},
			want: tx.TecBALANCE_NOT_FOUND,
		},
		{
			name: "unknown balance",
			req: func() *offertx.ManageOffer {
				m := Sell(env, "alice", u(1), u(1)).Build()
				m.QuoteBalance = "bal99999999"
				return m
			},
			want: tx.TecBALANCE_NOT_FOUND,
		},
		{
			name: "unknown sale book",
			req:  func() *offertx.ManageOffer { return Buy(env, "alice", u(1), u(1)).Book(42).Build() },
			want: tx.TecORDER_BOOK_NOT_FOUND,
		},
		{
			name: "blocked account",
			req:  func() *offertx.ManageOffer { return Sell(env, "mallory", u(1), u(1)).Build() },
			want: tx.TecACCOUNT_BLOCKED,
		},
		{
			name: "unknown account",
			req: func() *offertx.ManageOffer {
				return offertx.NewManageOffer("nobody", "bal1", "bal2", u(1), u(1), false)
			},
			want: tx.TecACCOUNT_NOT_FOUND,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := env.Header().Sequence
			jtx.RequireTxFail(t, env.Submit(tt.req()), tt.want)
			assert.Equal(t, seq, env.Header().Sequence, "Failed request advanced the ledger")
		})
	}
	RequireOfferCountBoth(t, env, 0, 0)
	RequireLocksMatchOffers(t, env, 0)
}

// TestOffer_Malformed checks that preflight failures never reach the ledger.
func TestOffer_Malformed(t *testing.T) {
	env := NewMarket(t)
	base := env.Fund("alice", BaseAsset, u(10))
	quote := env.BalanceID("alice", QuoteAsset)

	tests := []struct {
		name string
		req  *offertx.ManageOffer
		want tx.Result
	}{
		{"no account", offertx.NewManageOffer("", base, quote, u(1), u(1), false), tx.TemBAD_SOURCE},
		{"zero amount", offertx.NewManageOffer("alice", base, quote, 0, u(1), false), tx.TemBAD_AMOUNT},
		{"negative amount", offertx.NewManageOffer("alice", base, quote, -1, u(1), false), tx.TemBAD_AMOUNT},
		{"zero price", offertx.NewManageOffer("alice", base, quote, u(1), 0, false), tx.TemBAD_PRICE},
		{"same balance", offertx.NewManageOffer("alice", base, base, u(1), u(1), false), tx.TemSAME_BALANCE},
		{"missing balance", offertx.NewManageOffer("alice", base, "", u(1), u(1), false), tx.TemMALFORMED},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := env.Submit(tt.req)
			jtx.RequireTxFail(t, res, tt.want)
			assert.True(t, res.IsRejected())
		})
	}
	jtx.RequireLocked(t, env, "alice", BaseAsset, 0)
}

// TestOffer_AccountTypeFee checks that a fee rule naming an account type
// applies to that type only.
func TestOffer_AccountTypeFee(t *testing.T) {
	syndicate := entry.AccountSyndicate
	env := NewMarket(t, jtx.WithFees(fee.Rule{
		Type:        fee.OfferFee,
		Asset:       QuoteAsset,
		AccountType: &syndicate,
		Fee:         fee.Fee{Percent: 200},
	}))
	env.CreateAccount("fund", entry.AccountSyndicate)
	env.Fund("fund", QuoteAsset, u(100))
	env.Fund("bob", QuoteAsset, u(100))

	RequireResting(t, env.Submit(Buy(env, "bob", u(10), u(1)).Build()), u(10))
	jtx.RequireTxFail(t, env.Submit(Buy(env, "fund", u(10), u(1)).Build()), tx.TecFEE_MISMATCH)
	RequireResting(t, env.Submit(Buy(env, "fund", u(10), u(1)).Fee(jtx.Dec("0.2")).Build()), u(10))
	jtx.RequireLocked(t, env, "fund", QuoteAsset, jtx.Dec("10.2"))
}

// TestOffer_AmountRejections checks the failures raised by the offer's own
// amounts and balances once the ledger is read.
func TestOffer_AmountRejections(t *testing.T) {
	env := NewMarket(t)
	env.Fund("alice", BaseAsset, u(10))
	env.Fund("alice", QuoteAsset, u(10))
	second := env.ExtraBalance("alice", QuoteAsset)

	tests := []struct {
		name string
		req  func() *offertx.ManageOffer
		want tx.Result
	}{
		{
			name: "quote amount overflows",
			req:  func() *offertx.ManageOffer { return Buy(env, "alice", math.MaxInt64/2, u(10)).Build() },
			want: tx.TecOVERFLOW,
		},
		{
			name: "both balances in one asset",
			req: func() *offertx.ManageOffer {
				m := Buy(env, "alice", u(1), u(1)).Build()
				m.BaseBalance = second
				return m
			},
			want: tx.TecBALANCE_ASSET_MISMATCH,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jtx.RequireTxFail(t, env.Submit(tt.req()), tt.want)
		})
	}
	jtx.RequireLocked(t, env, "alice", QuoteAsset, 0)
	RequireOfferCountBoth(t, env, 0, 0)
}

// TestOffer_FeeConfigRejections checks how a fee configuration that cannot
// produce a usable fee fails the offer.
func TestOffer_FeeConfigRejections(t *testing.T) {
	tests := []struct {
		name string
		fee  fee.Fee
		err  error
		want tx.Result
	}{
		{"percent above hundred", fee.Fee{Percent: 1_0001}, nil, tx.TecINVALID_PERCENT_FEE},
		{"negative percent", fee.Fee{Percent: -1}, nil, tx.TecINVALID_PERCENT_FEE},
		{"lookup invalid percent", fee.Fee{}, fee.ErrInvalidPercent, tx.TecINVALID_PERCENT_FEE},
		{"lookup overflow", fee.Fee{}, fee.ErrOverflow, tx.TecFEE_OVERFLOW},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			lookup := feemock.NewMockLookup(ctrl)
			lookup.EXPECT().Lookup(gomock.Any()).Return(tt.fee, tt.err)

			env := NewMarket(t, jtx.WithFeeLookup(lookup))
			env.Fund("bob", QuoteAsset, u(100))

			jtx.RequireTxFail(t, env.Submit(Buy(env, "bob", u(10), u(1)).Fee(u(100)).Build()), tt.want)
			jtx.RequireLocked(t, env, "bob", QuoteAsset, 0)
			jtx.RequireBalance(t, env, "bob", QuoteAsset, u(100))
		})
	}
}
