// Package offer holds the ManageOffer integration tests and the helpers
// other test packages use to place offers.
package offer

import (
	offertx "github.com/LeJamon/goTokend/internal/core/tx/offer"
	jtx "github.com/LeJamon/goTokend/internal/testing"
)

// Default assets of the test market.
const (
	BaseAsset  = "TKN"
	QuoteAsset = "USD"
)

// ManageOfferBuilder provides a fluent interface for building ManageOffer
// requests against a test environment.
type ManageOfferBuilder struct {
	env     *jtx.TestEnv
	account string
	base    string
	quote   string
	amount  int64
	price   int64
	fee     int64
	isBuy   bool
	book    uint64
}

// Buy starts a buy of amt base units at price on the open TKN/USD market.
func Buy(env *jtx.TestEnv, account string, amt, price int64) *ManageOfferBuilder {
	return &ManageOfferBuilder{
		env:     env,
		account: account,
		base:    BaseAsset,
		quote:   QuoteAsset,
		amount:  amt,
		price:   price,
		isBuy:   true,
	}
}

// Sell starts a sell of amt base units at price on the open TKN/USD market.
func Sell(env *jtx.TestEnv, account string, amt, price int64) *ManageOfferBuilder {
	b := Buy(env, account, amt, price)
	b.isBuy = false
	return b
}

// Pair sets the base and quote assets.
func (b *ManageOfferBuilder) Pair(base, quote string) *ManageOfferBuilder {
	b.base, b.quote = base, quote
	return b
}

// Fee sets the most the account accepts to pay.
func (b *ManageOfferBuilder) Fee(f int64) *ManageOfferBuilder {
	b.fee = f
	return b
}

// Book places the offer in a sale's book instead of the open market.
func (b *ManageOfferBuilder) Book(saleID uint64) *ManageOfferBuilder {
	b.book = saleID
	return b
}

// Build resolves the account's balances and returns the request. Missing
// balances are created empty.
func (b *ManageOfferBuilder) Build() *offertx.ManageOffer {
	m := offertx.NewManageOffer(b.account,
		b.env.BalanceID(b.account, b.base),
		b.env.BalanceID(b.account, b.quote),
		b.amount, b.price, b.isBuy)
	m.Fee = b.fee
	m.OrderBookID = b.book
	return m
}

// Cancel builds a request deleting an offer.
func Cancel(account string, book, offerID uint64) *offertx.ManageOffer {
	return offertx.NewCancelOffer(account, book, offerID)
}

// Output returns the response of a ManageOffer, nil if it failed.
func Output(res jtx.TxResult) *offertx.Result {
	out, _ := res.Output.(*offertx.Result)
	return out
}
