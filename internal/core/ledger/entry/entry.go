package entry

import (
	"errors"
	"fmt"

	"github.com/ugorji/go/codec"
)

// Type represents a ledger entry type
type Type uint16

// All known ledger entry types. The value doubles as the key-space prefix.
const (
	TypeAccount      Type = 'a'
	TypeBalance      Type = 'b'
	TypeAsset        Type = 'A'
	TypeAssetPair    Type = 'p'
	TypeOffer        Type = 'o'
	TypeSale         Type = 's'
	TypeLedgerHeader Type = 'h'

	// Index entries. They hold a reference to a primary entry.
	TypeBookIndex      Type = 'B'
	TypeAccountBalance Type = 'x'
)

// String returns the string representation of the entry type
func (t Type) String() string {
	switch t {
	case TypeAccount:
		return "Account"
	case TypeBalance:
		return "Balance"
	case TypeAsset:
		return "Asset"
	case TypeAssetPair:
		return "AssetPair"
	case TypeOffer:
		return "Offer"
	case TypeSale:
		return "Sale"
	case TypeLedgerHeader:
		return "LedgerHeader"
	case TypeBookIndex:
		return "BookIndex"
	case TypeAccountBalance:
		return "AccountBalance"
	default:
		return fmt.Sprintf("Unknown(0x%04x)", uint16(t))
	}
}

// LedgerEntry is the closed set of entries persisted in the ledger.
// Exactly one payload field is set and it matches Type.
type LedgerEntry struct {
	Type Type `codec:"type"`

	Account   *Account      `codec:"account,omitempty"`
	Balance   *Balance      `codec:"balance,omitempty"`
	Asset     *Asset        `codec:"asset,omitempty"`
	AssetPair *AssetPair    `codec:"pair,omitempty"`
	Offer     *Offer        `codec:"offer,omitempty"`
	Sale      *Sale         `codec:"sale,omitempty"`
	Header    *LedgerHeader `codec:"header,omitempty"`
	Ref       *Ref          `codec:"ref,omitempty"`
}

// Ref is the payload of an index entry.
type Ref struct {
	ID  uint64 `codec:"id,omitempty"`
	Key string `codec:"key,omitempty"`
}

var (
	ErrWrongType    = errors.New("ledger entry has unexpected type")
	ErrEmptyPayload = errors.New("ledger entry has no payload")
)

var cbor = newHandle()

func newHandle() *codec.CborHandle {
	h := &codec.CborHandle{}
	h.Canonical = true
	return h
}

// Encode serializes the entry with the canonical CBOR encoding, so equal
// entries always produce identical bytes.
func Encode(e LedgerEntry) ([]byte, error) {
	if !e.hasPayload() {
		return nil, ErrEmptyPayload
	}
	var out []byte
	if err := codec.NewEncoderBytes(&out, cbor).Encode(&e); err != nil {
		return nil, fmt.Errorf("encode %s: %w", e.Type, err)
	}
	return out, nil
}

// Decode parses an entry previously produced by Encode.
func Decode(data []byte) (LedgerEntry, error) {
	var e LedgerEntry
	if err := codec.NewDecoderBytes(data, cbor).Decode(&e); err != nil {
		return LedgerEntry{}, fmt.Errorf("decode ledger entry: %w", err)
	}
	if !e.hasPayload() {
		return LedgerEntry{}, ErrEmptyPayload
	}
	return e, nil
}

func (e *LedgerEntry) hasPayload() bool {
	switch e.Type {
	case TypeAccount:
		return e.Account != nil
	case TypeBalance:
		return e.Balance != nil
	case TypeAsset:
		return e.Asset != nil
	case TypeAssetPair:
		return e.AssetPair != nil
	case TypeOffer:
		return e.Offer != nil
	case TypeSale:
		return e.Sale != nil
	case TypeLedgerHeader:
		return e.Header != nil
	case TypeBookIndex, TypeAccountBalance:
		return e.Ref != nil
	}
	return false
}

func decodeAs[T any](data []byte, want Type, pick func(*LedgerEntry) *T) (*T, error) {
	e, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if e.Type != want {
		return nil, fmt.Errorf("%w: want %s, got %s", ErrWrongType, want, e.Type)
	}
	return pick(&e), nil
}

// EncodeAccount serializes an account entry.
func EncodeAccount(a *Account) ([]byte, error) {
	return Encode(LedgerEntry{Type: TypeAccount, Account: a})
}

// DecodeAccount parses an account entry.
func DecodeAccount(data []byte) (*Account, error) {
	return decodeAs(data, TypeAccount, func(e *LedgerEntry) *Account { return e.Account })
}

// EncodeBalance serializes a balance entry.
func EncodeBalance(b *Balance) ([]byte, error) {
	return Encode(LedgerEntry{Type: TypeBalance, Balance: b})
}

// DecodeBalance parses a balance entry.
func DecodeBalance(data []byte) (*Balance, error) {
	return decodeAs(data, TypeBalance, func(e *LedgerEntry) *Balance { return e.Balance })
}

// EncodeAsset serializes an asset entry.
func EncodeAsset(a *Asset) ([]byte, error) {
	return Encode(LedgerEntry{Type: TypeAsset, Asset: a})
}

// DecodeAsset parses an asset entry.
func DecodeAsset(data []byte) (*Asset, error) {
	return decodeAs(data, TypeAsset, func(e *LedgerEntry) *Asset { return e.Asset })
}

// EncodeAssetPair serializes an asset pair entry.
func EncodeAssetPair(p *AssetPair) ([]byte, error) {
	return Encode(LedgerEntry{Type: TypeAssetPair, AssetPair: p})
}

// DecodeAssetPair parses an asset pair entry.
func DecodeAssetPair(data []byte) (*AssetPair, error) {
	return decodeAs(data, TypeAssetPair, func(e *LedgerEntry) *AssetPair { return e.AssetPair })
}

// EncodeOffer serializes an offer entry.
func EncodeOffer(o *Offer) ([]byte, error) {
	return Encode(LedgerEntry{Type: TypeOffer, Offer: o})
}

// DecodeOffer parses an offer entry.
func DecodeOffer(data []byte) (*Offer, error) {
	return decodeAs(data, TypeOffer, func(e *LedgerEntry) *Offer { return e.Offer })
}

// EncodeSale serializes a sale entry. The quote assets are normalized first.
func EncodeSale(s *Sale) ([]byte, error) {
	s.Normalize()
	return Encode(LedgerEntry{Type: TypeSale, Sale: s})
}

// DecodeSale parses a sale entry.
func DecodeSale(data []byte) (*Sale, error) {
	return decodeAs(data, TypeSale, func(e *LedgerEntry) *Sale { return e.Sale })
}

// EncodeHeader serializes the ledger header singleton.
func EncodeHeader(h *LedgerHeader) ([]byte, error) {
	return Encode(LedgerEntry{Type: TypeLedgerHeader, Header: h})
}

// DecodeHeader parses the ledger header singleton.
func DecodeHeader(data []byte) (*LedgerHeader, error) {
	return decodeAs(data, TypeLedgerHeader, func(e *LedgerEntry) *LedgerHeader { return e.Header })
}

// EncodeRef serializes an index entry of type t.
func EncodeRef(t Type, r *Ref) ([]byte, error) {
	return Encode(LedgerEntry{Type: t, Ref: r})
}

// DecodeRef parses an index entry of type t.
func DecodeRef(t Type, data []byte) (*Ref, error) {
	return decodeAs(data, t, func(e *LedgerEntry) *Ref { return e.Ref })
}
