package keylet

import (
	"bytes"
	"sort"
	"testing"

	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyletTypePrefix(t *testing.T) {
	cases := []Keylet{
		Account("alice"),
		Balance("b1"),
		AccountBalance("alice", "USD"),
		Asset("USD"),
		AssetPair("TKN", "USD"),
		Offer(1),
		Sale(1),
		Header(),
	}
	for _, k := range cases {
		assert.Equal(t, byte(k.Type), k.Key[0], k.Type.String())
		assert.True(t, bytes.HasPrefix(k.Key, Type(k.Type)))
	}
}

func TestBookEntryOrdering(t *testing.T) {
	offer := func(id uint64, price int64, buy bool) *entry.Offer {
		return &entry.Offer{OfferID: id, OrderBookID: 0, BaseAsset: "TKN", QuoteAsset: "USD", Price: price, IsBuy: buy}
	}

	t.Run("bids sort highest first then oldest", func(t *testing.T) {
		offers := []*entry.Offer{
			offer(4, 1_0000, true),
			offer(3, 3_0000, true),
			offer(1, 2_0000, true),
			offer(2, 3_0000, true),
		}
		assert.Equal(t, []uint64{2, 3, 1, 4}, sortedIDs(offers))
	})

	t.Run("asks sort lowest first then oldest", func(t *testing.T) {
		offers := []*entry.Offer{
			offer(4, 1_0000, false),
			offer(3, 3_0000, false),
			offer(5, 1_0000, false),
			offer(1, 2_0000, false),
		}
		assert.Equal(t, []uint64{4, 5, 1, 3}, sortedIDs(offers))
	})
}

func sortedIDs(offers []*entry.Offer) []uint64 {
	keys := make(map[string]uint64, len(offers))
	sorted := make([]string, 0, len(offers))
	for _, o := range offers {
		k := string(BookEntry(o).Key)
		keys[k] = o.OfferID
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)
	ids := make([]uint64, 0, len(sorted))
	for _, k := range sorted {
		ids = append(ids, keys[k])
	}
	return ids
}

func TestBookSidesAreDisjoint(t *testing.T) {
	buy := BookSide(1, "TKN", "USD", true)
	sell := BookSide(1, "TKN", "USD", false)
	assert.False(t, bytes.HasPrefix(buy, sell))
	assert.False(t, bytes.HasPrefix(sell, buy))
	assert.True(t, bytes.HasPrefix(buy, Book(1, "TKN", "USD")))
	assert.True(t, bytes.HasPrefix(sell, Book(1, "TKN", "USD")))

	// a different sale book never shares a prefix
	assert.False(t, bytes.HasPrefix(BookSide(2, "TKN", "USD", true), Book(1, "TKN", "USD")))
}

func TestPrefixEnd(t *testing.T) {
	assert.Equal(t, []byte{0x01, 0x03}, PrefixEnd([]byte{0x01, 0x02}))
	assert.Equal(t, []byte{0x02}, PrefixEnd([]byte{0x01, 0xff}))
	assert.Nil(t, PrefixEnd([]byte{0xff, 0xff}))

	p := BookSide(0, "A", "B", true)
	end := PrefixEnd(p)
	require.NotNil(t, end)
	k := BookEntry(&entry.Offer{OfferID: ^uint64(0), BaseAsset: "A", QuoteAsset: "B", Price: 1, IsBuy: true}).Key
	assert.Negative(t, bytes.Compare(k, end))
}
