package entry

// IDKind selects one of the ledger's id sequences.
type IDKind int

const (
	IDOffer IDKind = iota
	IDSale
	IDBalance
)

// IDGenerators holds the last id handed out for each kind of entry.
type IDGenerators struct {
	Offer   uint64 `codec:"offer"`
	Sale    uint64 `codec:"sale"`
	Balance uint64 `codec:"balance"`
}

// LedgerHeader is the singleton describing the current ledger.
type LedgerHeader struct {
	Sequence  uint64       `codec:"seq"`
	CloseTime int64        `codec:"close_time"`
	Version   SaleVersion  `codec:"version"`
	IDs       IDGenerators `codec:"ids"`
}

// NextID advances the sequence for kind and returns the new id. Ids start at 1.
func (h *LedgerHeader) NextID(kind IDKind) uint64 {
	switch kind {
	case IDOffer:
		h.IDs.Offer++
		return h.IDs.Offer
	case IDSale:
		h.IDs.Sale++
		return h.IDs.Sale
	case IDBalance:
		h.IDs.Balance++
		return h.IDs.Balance
	}
	panic("unknown id kind")
}
