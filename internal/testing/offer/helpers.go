package offer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
	jtx "github.com/LeJamon/goTokend/internal/testing"
)

// Issuer owns every asset of the test market.
const Issuer = "issuer"

// NewMarket creates a test environment with a tradable TKN/USD pair and
// the accounts alice, bob and carol. Nothing is funded yet.
func NewMarket(t *testing.T, opts ...jtx.EnvOption) *jtx.TestEnv {
	t.Helper()
	env := jtx.NewTestEnv(t, opts...)
	env.CreateAccount(Issuer, entry.AccountSyndicate)
	env.CreateAccounts("alice", "bob", "carol")
	env.CreateAsset(BaseAsset, Issuer, jtx.Units(1_000_000_000), entry.AssetPolicyTransferable)
	env.CreateAsset(QuoteAsset, Issuer, jtx.Units(1_000_000_000), entry.AssetPolicyTransferable|entry.AssetPolicyBaseAsset)
	env.CreateAssetPair(BaseAsset, QuoteAsset, jtx.Units(1), true)
	return env
}

// RequireResting asserts that the request left an offer of amt base units
// resting in its book and returns its id.
func RequireResting(t *testing.T, res jtx.TxResult, amt int64) uint64 {
	t.Helper()
	jtx.RequireTxSuccess(t, res)
	out := Output(res)
	require.NotNil(t, out)
	require.NotNil(t, out.Offer, "Expected a resting offer")
	require.Equal(t, amt, out.Offer.BaseAmount,
		"Resting offer amount mismatch: expected %s, got %s", jtx.Format(amt), jtx.Format(out.Offer.BaseAmount))
	return out.Offer.OfferID
}

// RequireFilled asserts that the request was consumed by n fills.
func RequireFilled(t *testing.T, res jtx.TxResult, n int) {
	t.Helper()
	jtx.RequireTxSuccess(t, res)
	out := Output(res)
	require.NotNil(t, out)
	require.Nil(t, out.Offer, "Expected the offer to be filled")
	require.Len(t, out.OffersClaimed, n)
}

// RequireLocksMatchOffers asserts that every balance of the market's
// assets holds locked exactly what its resting offers need.
func RequireLocksMatchOffers(t require.TestingT, env *jtx.TestEnv, orderBookID uint64) {
	want := make(map[string]int64)
	for _, isBuy := range []bool{true, false} {
		for _, o := range env.Offers(orderBookID, BaseAsset, QuoteAsset, isBuy) {
			l, ok := o.LockedAmount()
			require.True(t, ok)
			want[o.LockedBalance()] += l
		}
	}
	for _, asset := range []string{BaseAsset, QuoteAsset} {
		for _, b := range env.Balances(asset) {
			require.Equal(t, want[b.BalanceID], b.Locked,
				"Balance %s of %s locks %s, offers need %s",
				b.BalanceID, b.AccountID, jtx.Format(b.Locked), jtx.Format(want[b.BalanceID]))
		}
	}
}
