package tx

import (
	"fmt"

	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
	"github.com/LeJamon/goTokend/internal/core/ledger/keylet"
)

// LoadOffer returns the offer with offerID in the given book, or
// ErrOfferNotFound if there is no such offer in that book.
func (s *LedgerStore) LoadOffer(orderBookID, offerID uint64) (*entry.Offer, error) {
	o, err := read(s, keylet.Offer(offerID), entry.DecodeOffer)
	if err != nil {
		return nil, err
	}
	if o == nil || o.OrderBookID != orderBookID {
		return nil, fmt.Errorf("%w: %d in book %d", ErrOfferNotFound, offerID, orderBookID)
	}
	return o, nil
}

// InsertOffer stores a new offer and places it in its book. The offer id
// must already be assigned.
func (s *LedgerStore) InsertOffer(o *entry.Offer) error {
	if o.OfferID == 0 {
		return Fatalf("insert offer", "offer has no id")
	}
	if err := write(s, keylet.Offer(o.OfferID), o, entry.EncodeOffer, true); err != nil {
		return err
	}
	return write(s, keylet.BookEntry(o), &entry.Ref{ID: o.OfferID}, encodeBookRef, true)
}

// StoreOffer writes back an offer that stays in its book at the same
// price, as after a partial fill.
func (s *LedgerStore) StoreOffer(o *entry.Offer) error {
	return write(s, keylet.Offer(o.OfferID), o, entry.EncodeOffer, false)
}

// DeleteOffer removes an offer and its book entry.
func (s *LedgerStore) DeleteOffer(o *entry.Offer) error {
	if err := s.view.Erase(keylet.Offer(o.OfferID)); err != nil {
		return fmt.Errorf("erase offer %d: %w", o.OfferID, err)
	}
	if err := s.view.Erase(keylet.BookEntry(o)); err != nil {
		return &FatalError{Op: "erase book entry", Err: err}
	}
	return nil
}

func encodeBookRef(r *entry.Ref) ([]byte, error) {
	return entry.EncodeRef(entry.TypeBookIndex, r)
}

// ForEachOffer visits the offers of one book side best first: best price,
// then lowest offer id. fn returns false to stop.
func (s *LedgerStore) ForEachOffer(orderBookID uint64, base, quote string, isBuy bool, fn func(*entry.Offer) (bool, error)) error {
	var ids []uint64
	var iterErr error
	err := s.view.ForEach(keylet.BookSide(orderBookID, base, quote, isBuy), func(_, data []byte) bool {
		ref, err := entry.DecodeRef(entry.TypeBookIndex, data)
		if err != nil {
			iterErr = &FatalError{Op: "decode book entry", Err: err}
			return false
		}
		ids = append(ids, ref.ID)
		return true
	})
	if err != nil {
		return err
	}
	if iterErr != nil {
		return iterErr
	}

	// offers are loaded after the index walk so fn may modify the book
	for _, id := range ids {
		o, err := s.LoadOffer(orderBookID, id)
		if err != nil {
			return &FatalError{Op: "book entry without offer", Err: err}
		}
		more, err := fn(o)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return nil
}

// LoadOffersBestPrice returns up to limit offers of one book side, best
// first, skipping the first offset. A limit of 0 means no limit.
func (s *LedgerStore) LoadOffersBestPrice(orderBookID uint64, base, quote string, isBuy bool, limit, offset int) ([]*entry.Offer, error) {
	var out []*entry.Offer
	skipped := 0
	err := s.ForEachOffer(orderBookID, base, quote, isBuy, func(o *entry.Offer) (bool, error) {
		if skipped < offset {
			skipped++
			return true, nil
		}
		out = append(out, o)
		return limit == 0 || len(out) < limit, nil
	})
	return out, err
}

// BestOffer returns the best offer of one book side, or nil if it is empty.
func (s *LedgerStore) BestOffer(orderBookID uint64, base, quote string, isBuy bool) (*entry.Offer, error) {
	var (
		bestID    uint64
		decodeErr error
	)
	err := s.view.ForEach(keylet.BookSide(orderBookID, base, quote, isBuy), func(_, data []byte) bool {
		ref, err := entry.DecodeRef(entry.TypeBookIndex, data)
		if err != nil {
			decodeErr = &FatalError{Op: "decode book entry", Err: err}
		} else {
			bestID = ref.ID
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	if bestID == 0 {
		return nil, nil
	}
	o, err := s.LoadOffer(orderBookID, bestID)
	if err != nil {
		return nil, &FatalError{Op: "book entry without offer", Err: err}
	}
	return o, nil
}
