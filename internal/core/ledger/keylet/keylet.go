package keylet

import (
	"bytes"
	"encoding/binary"

	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
)

// Book sides
const (
	sideBuy  byte = 0x01
	sideSell byte = 0x02
)

const sep byte = 0x00

// Keylet represents an addressable location in the ledger state.
// The first key byte is the entry type, so every type owns a contiguous
// key range.
type Keylet struct {
	Type entry.Type
	Key  []byte
}

func (k Keylet) String() string {
	return k.Type.String() + ":" + string(k.Key[1:])
}

func newKey(t entry.Type, size int) []byte {
	key := make([]byte, 1, 1+size)
	key[0] = byte(t)
	return key
}

func be64(v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b[:]
}

// Account returns the keylet for an account entry.
func Account(accountID string) Keylet {
	key := append(newKey(entry.TypeAccount, len(accountID)), accountID...)
	return Keylet{Type: entry.TypeAccount, Key: key}
}

// Balance returns the keylet for a balance entry.
func Balance(balanceID string) Keylet {
	key := append(newKey(entry.TypeBalance, len(balanceID)), balanceID...)
	return Keylet{Type: entry.TypeBalance, Key: key}
}

// AccountBalance returns the keylet of the index entry that maps an
// account and asset to the account's balance in that asset.
func AccountBalance(accountID, asset string) Keylet {
	key := newKey(entry.TypeAccountBalance, len(accountID)+len(asset)+1)
	key = append(key, accountID...)
	key = append(key, sep)
	key = append(key, asset...)
	return Keylet{Type: entry.TypeAccountBalance, Key: key}
}

// Asset returns the keylet for an asset entry.
func Asset(code string) Keylet {
	key := append(newKey(entry.TypeAsset, len(code)), code...)
	return Keylet{Type: entry.TypeAsset, Key: key}
}

// AssetPair returns the keylet for the asset pair (base, quote).
func AssetPair(base, quote string) Keylet {
	key := newKey(entry.TypeAssetPair, len(base)+len(quote)+1)
	key = append(key, base...)
	key = append(key, sep)
	key = append(key, quote...)
	return Keylet{Type: entry.TypeAssetPair, Key: key}
}

// Offer returns the keylet for an offer entry.
func Offer(offerID uint64) Keylet {
	return Keylet{Type: entry.TypeOffer, Key: append(newKey(entry.TypeOffer, 8), be64(offerID)...)}
}

// Sale returns the keylet for a sale entry.
func Sale(saleID uint64) Keylet {
	return Keylet{Type: entry.TypeSale, Key: append(newKey(entry.TypeSale, 8), be64(saleID)...)}
}

// Header returns the keylet for the singleton ledger header.
func Header() Keylet {
	return Keylet{Type: entry.TypeLedgerHeader, Key: newKey(entry.TypeLedgerHeader, 0)}
}

// Type returns the prefix shared by every key of type t.
func Type(t entry.Type) []byte {
	return newKey(t, 0)
}

// BookSide returns the key prefix of one side of an order book. Within the
// prefix, keys sort best price first and, at equal price, by offer id.
func BookSide(orderBookID uint64, base, quote string, isBuy bool) []byte {
	key := newKey(entry.TypeBookIndex, 8+len(base)+len(quote)+3)
	key = append(key, be64(orderBookID)...)
	key = append(key, base...)
	key = append(key, sep)
	key = append(key, quote...)
	key = append(key, sep)
	if isBuy {
		key = append(key, sideBuy)
	} else {
		key = append(key, sideSell)
	}
	return key
}

// Book returns the key prefix of the whole order book, both sides.
func Book(orderBookID uint64, base, quote string) []byte {
	side := BookSide(orderBookID, base, quote, true)
	return side[:len(side)-1]
}

// BookEntry returns the keylet of the index entry placing o in its book.
func BookEntry(o *entry.Offer) Keylet {
	key := BookSide(o.OrderBookID, o.BaseAsset, o.QuoteAsset, o.IsBuy)
	key = append(key, be64(PriceKey(o.Price, o.IsBuy))...)
	key = append(key, be64(o.OfferID)...)
	return Keylet{Type: entry.TypeBookIndex, Key: key}
}

// PriceKey maps a price to its sort key. Buy prices are complemented so
// the highest bid sorts first.
func PriceKey(price int64, isBuy bool) uint64 {
	if isBuy {
		return ^uint64(price)
	}
	return uint64(price)
}

// PrefixEnd returns the smallest key greater than every key starting with
// prefix, or nil if there is none.
func PrefixEnd(prefix []byte) []byte {
	end := bytes.Clone(prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
