package tx

import (
	"fmt"

	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
	"github.com/LeJamon/goTokend/internal/core/ledger/keylet"
)

// LoadSale returns the sale or ErrSaleNotFound.
func (s *LedgerStore) LoadSale(saleID uint64) (*entry.Sale, error) {
	sale, err := read(s, keylet.Sale(saleID), entry.DecodeSale)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("%w: %d", ErrSaleNotFound, saleID)
	}
	return sale, nil
}

// InsertSale creates a sale.
func (s *LedgerStore) InsertSale(sale *entry.Sale) error {
	return write(s, keylet.Sale(sale.SaleID), sale, entry.EncodeSale, true)
}

// StoreSale writes back a sale.
func (s *LedgerStore) StoreSale(sale *entry.Sale) error {
	return write(s, keylet.Sale(sale.SaleID), sale, entry.EncodeSale, false)
}

// DeleteSale removes a sale.
func (s *LedgerStore) DeleteSale(saleID uint64) error {
	if err := s.view.Erase(keylet.Sale(saleID)); err != nil {
		return fmt.Errorf("erase sale %d: %w", saleID, err)
	}
	return nil
}

// SaleIDs returns the ids of every stored sale in ascending order.
func (s *LedgerStore) SaleIDs() ([]uint64, error) {
	var ids []uint64
	var decodeErr error
	err := s.view.ForEach(keylet.Type(entry.TypeSale), func(_, data []byte) bool {
		sale, err := entry.DecodeSale(data)
		if err != nil {
			decodeErr = &FatalError{Op: "decode sale", Err: err}
			return false
		}
		ids = append(ids, sale.SaleID)
		return true
	})
	if err != nil {
		return nil, err
	}
	return ids, decodeErr
}
