package offer

import (
	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
	"github.com/LeJamon/goTokend/internal/core/tx"
)

// OrderBook is one (order book id, base asset, quote asset) key. Book id 0
// is the open market, any other id is the sale with that id.
type OrderBook struct {
	store *tx.LedgerStore
	ID    uint64
	Base  string
	Quote string
}

// NewOrderBook returns the book for the given key.
func NewOrderBook(store *tx.LedgerStore, id uint64, base, quote string) *OrderBook {
	return &OrderBook{store: store, ID: id, Base: base, Quote: quote}
}

// BookOf returns the book o rests in.
func BookOf(store *tx.LedgerStore, o *entry.Offer) *OrderBook {
	return NewOrderBook(store, o.OrderBookID, o.BaseAsset, o.QuoteAsset)
}

// Best returns the best offer on one side, or nil if that side is empty.
func (b *OrderBook) Best(isBuy bool) (*entry.Offer, error) {
	return b.store.BestOffer(b.ID, b.Base, b.Quote, isBuy)
}

// Offers returns offers of one side best first. A limit of 0 returns all.
func (b *OrderBook) Offers(isBuy bool, limit, offset int) ([]*entry.Offer, error) {
	return b.store.LoadOffersBestPrice(b.ID, b.Base, b.Quote, isBuy, limit, offset)
}

// Place assigns the next offer id to o and puts it in the book.
func (b *OrderBook) Place(o *entry.Offer) error {
	if o.OrderBookID != b.ID || o.BaseAsset != b.Base || o.QuoteAsset != b.Quote {
		return tx.Fatalf("place offer", "offer for %d/%s/%s placed in %d/%s/%s",
			o.OrderBookID, o.BaseAsset, o.QuoteAsset, b.ID, b.Base, b.Quote)
	}
	id, err := b.store.NextID(entry.IDOffer)
	if err != nil {
		return err
	}
	o.OfferID = id
	return b.store.InsertOffer(o)
}

// Reprice moves an offer to a new price and base amount, keeping its id
// and therefore its time priority.
func (b *OrderBook) Reprice(o *entry.Offer, baseAmount, price int64) error {
	if err := b.store.DeleteOffer(o); err != nil {
		return err
	}
	o.BaseAmount = baseAmount
	o.Price = price
	return b.store.InsertOffer(o)
}
