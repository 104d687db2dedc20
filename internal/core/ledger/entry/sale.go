package entry

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/LeJamon/goTokend/internal/core/amount"
)

// SaleType determines how a sale reserves and distributes its base asset.
type SaleType int32

const (
	SaleTypeBasic        SaleType = 1
	SaleTypeCrowdFunding SaleType = 2
	SaleTypeFixedPrice   SaleType = 3
)

func (t SaleType) String() string {
	switch t {
	case SaleTypeBasic:
		return "basic_sale"
	case SaleTypeCrowdFunding:
		return "crowd_funding"
	case SaleTypeFixedPrice:
		return "fixed_price"
	}
	return fmt.Sprintf("sale_type(%d)", int32(t))
}

// ParseSaleType returns the sale type for its request name.
func ParseSaleType(name string) (SaleType, error) {
	switch strings.ToLower(name) {
	case "basic_sale", "basic", "":
		return SaleTypeBasic, nil
	case "crowd_funding":
		return SaleTypeCrowdFunding, nil
	case "fixed_price":
		return SaleTypeFixedPrice, nil
	}
	return 0, fmt.Errorf("unknown sale type %q", name)
}

// SaleState is the promotional state of a sale.
type SaleState int32

const (
	SaleStateNone      SaleState = 0
	SaleStatePromotion SaleState = 1
	SaleStateVoting    SaleState = 2
)

func (s SaleState) String() string {
	switch s {
	case SaleStateNone:
		return "none"
	case SaleStatePromotion:
		return "promotion"
	case SaleStateVoting:
		return "voting"
	}
	return fmt.Sprintf("sale_state(%d)", int32(s))
}

// ParseSaleState returns the sale state for its request name.
func ParseSaleState(name string) (SaleState, error) {
	switch strings.ToLower(name) {
	case "none", "":
		return SaleStateNone, nil
	case "promotion":
		return SaleStatePromotion, nil
	case "voting":
		return SaleStateVoting, nil
	}
	return 0, fmt.Errorf("unknown sale state %q", name)
}

// SaleVersion is the extension tag of a stored sale. Each version adds
// fields on top of the previous one.
type SaleVersion int32

const (
	SaleVersionEmpty         SaleVersion = 0
	SaleVersionTypedSale     SaleVersion = 1
	SaleVersionStatableSales SaleVersion = 2

	LatestSaleVersion = SaleVersionStatableSales
)

func (v SaleVersion) String() string {
	switch v {
	case SaleVersionEmpty:
		return "EMPTY"
	case SaleVersionTypedSale:
		return "TYPED_SALE"
	case SaleVersionStatableSales:
		return "STATABLE_SALES"
	}
	return fmt.Sprintf("SaleVersion(%d)", int32(v))
}

// Fatal sale errors. Hitting one of them means the surrounding code broke
// an invariant, not that the request was invalid.
var (
	ErrInvalidMigration = errors.New("invalid sale version migration")
	ErrNegativeCap      = errors.New("sale cap would become negative")
)

// Validation errors returned by EnsureValid.
var (
	ErrInvalidAssetCode      = errors.New("invalid asset code")
	ErrBaseIsQuote           = errors.New("base asset equals a quote asset")
	ErrInvalidSaleTime       = errors.New("end time must be after start time")
	ErrInvalidSaleCaps       = errors.New("soft cap exceeds hard cap")
	ErrInvalidDetails        = errors.New("details must be valid JSON")
	ErrCapExceedsMax         = errors.New("current cap in base exceeds max amount to be sold")
	ErrNoQuoteAssets         = errors.New("sale has no quote assets")
	ErrInvalidQuotePrice     = errors.New("quote asset price must be positive")
	ErrDuplicateQuoteAsset   = errors.New("duplicate quote asset")
	ErrDefaultQuoteNotListed = errors.New("default quote asset is not a sale quote asset")
	ErrQuoteAssetNotFound    = errors.New("quote asset not found in sale")
)

// SaleQuoteAsset is one of the assets a sale accepts as payment, with its
// fixed price in that asset and the amount raised so far.
type SaleQuoteAsset struct {
	QuoteAsset   string `codec:"asset"`
	Price        int64  `codec:"price"`
	CurrentCap   int64  `codec:"current_cap"`
	QuoteBalance string `codec:"balance"`
}

// Sale is a primary offering of BaseAsset against QuoteAssets. SoftCap and
// HardCap are denominated in DefaultQuoteAsset.
type Sale struct {
	SaleID            uint64           `codec:"id"`
	OwnerID           string           `codec:"owner"`
	BaseAsset         string           `codec:"base_asset"`
	DefaultQuoteAsset string           `codec:"default_quote_asset"`
	StartTime         int64            `codec:"start_time"`
	EndTime           int64            `codec:"end_time"`
	SoftCap           int64            `codec:"soft_cap"`
	HardCap           int64            `codec:"hard_cap"`
	MaxAmountToBeSold int64            `codec:"max_amount_to_be_sold"`
	CurrentCapInBase  int64            `codec:"current_cap_in_base"`
	QuoteAssets       []SaleQuoteAsset `codec:"quote_assets"`
	Details           string           `codec:"details"`

	// BaseBalance receives the issued base asset at close, before it is
	// delivered to participants.
	BaseBalance string `codec:"base_balance"`

	// LastCheckedCapInBase is the raised amount seen by the last evaluation.
	LastCheckedCapInBase int64 `codec:"last_checked_cap"`

	Version  SaleVersion `codec:"version"`
	SaleType SaleType    `codec:"sale_type,omitempty"`
	State    SaleState   `codec:"state,omitempty"`
}

// Type returns the sale type, BASIC for sales stored before sale types existed.
func (s *Sale) Type() SaleType {
	if s.Version < SaleVersionTypedSale || s.SaleType == 0 {
		return SaleTypeBasic
	}
	return s.SaleType
}

// GetState returns the sale state, NONE for sales stored before states existed.
func (s *Sale) GetState() SaleState {
	if s.Version < SaleVersionStatableSales {
		return SaleStateNone
	}
	return s.State
}

// IsCrowdFunding reports whether the sale distributes its base asset
// proportionally at close instead of reserving it per participation.
func (s *Sale) IsCrowdFunding() bool {
	return s.Type() == SaleTypeCrowdFunding
}

// Normalize sorts quote assets by code.
func (s *Sale) Normalize() {
	slices.SortFunc(s.QuoteAssets, func(a, b SaleQuoteAsset) int {
		return strings.Compare(a.QuoteAsset, b.QuoteAsset)
	})
}

// QuoteAsset returns the entry for code.
func (s *Sale) QuoteAsset(code string) (*SaleQuoteAsset, error) {
	for i := range s.QuoteAssets {
		if s.QuoteAssets[i].QuoteAsset == code {
			return &s.QuoteAssets[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrQuoteAssetNotFound, code)
}

// TryLockBaseAsset reserves amt of the base asset against MaxAmountToBeSold.
// It returns false, leaving the sale untouched, if the reservation does not
// fit. Crowdfunding sales never reserve ahead of settlement.
func (s *Sale) TryLockBaseAsset(amt int64) bool {
	if s.IsCrowdFunding() {
		return true
	}
	if amt < 0 {
		return false
	}
	total, ok := amount.SafeSum(s.CurrentCapInBase, amt)
	if !ok || total > s.MaxAmountToBeSold {
		return false
	}
	s.CurrentCapInBase = total
	return true
}

// UnlockBaseAsset releases a reservation made by TryLockBaseAsset.
func (s *Sale) UnlockBaseAsset(amt int64) error {
	if s.IsCrowdFunding() {
		return nil
	}
	if amt < 0 || s.CurrentCapInBase < amt {
		return fmt.Errorf("%w: sale %d unlock %d of %d", ErrNegativeCap, s.SaleID, amt, s.CurrentCapInBase)
	}
	s.CurrentCapInBase -= amt
	return nil
}

// BaseAmountForCurrentCap converts the amount raised in code into base asset
// units at that quote asset's price.
func (s *Sale) BaseAmountForCurrentCap(code string) (int64, error) {
	qa, err := s.QuoteAsset(code)
	if err != nil {
		return 0, err
	}
	base, ok := amount.BaseAmount(qa.CurrentCap, qa.Price)
	if !ok {
		return 0, amount.ErrOverflow
	}
	return base, nil
}

// TotalBaseAmountForCurrentCap is the amount raised over every quote asset,
// in base asset units.
func (s *Sale) TotalBaseAmountForCurrentCap() (int64, error) {
	var total int64
	for _, qa := range s.QuoteAssets {
		base, err := s.BaseAmountForCurrentCap(qa.QuoteAsset)
		if err != nil {
			return 0, err
		}
		var ok bool
		if total, ok = amount.SafeSum(total, base); !ok {
			return 0, amount.ErrOverflow
		}
	}
	return total, nil
}

// RaisedInBase is what the sale has raised so far in base asset units. A
// sale reserving per participation counts the base it reserved, since the
// quote it raised was rounded up per participation. A crowdfunding sale
// converts what it raised at each quote asset's price.
func (s *Sale) RaisedInBase() (int64, error) {
	if s.IsCrowdFunding() {
		return s.TotalBaseAmountForCurrentCap()
	}
	return s.CurrentCapInBase, nil
}

// SoftCapInBase converts the soft cap into base asset units.
func (s *Sale) SoftCapInBase() (int64, error) {
	return s.capInBase(s.SoftCap)
}

// HardCapInBase converts the hard cap into base asset units.
func (s *Sale) HardCapInBase() (int64, error) {
	return s.capInBase(s.HardCap)
}

func (s *Sale) capInBase(capInQuote int64) (int64, error) {
	qa, err := s.QuoteAsset(s.DefaultQuoteAsset)
	if err != nil {
		return 0, ErrDefaultQuoteNotListed
	}
	base, ok := amount.BaseAmount(capInQuote, qa.Price)
	if !ok {
		return 0, amount.ErrOverflow
	}
	return base, nil
}

// MigrateToVersion upgrades the sale by exactly one version. Migrating to
// the current version is a no-op.
func (s *Sale) MigrateToVersion(v SaleVersion) error {
	if v == s.Version {
		return nil
	}
	if v != s.Version+1 || v > LatestSaleVersion {
		return fmt.Errorf("%w: %s to %s", ErrInvalidMigration, s.Version, v)
	}
	switch v {
	case SaleVersionTypedSale:
		s.SaleType = SaleTypeBasic
	case SaleVersionStatableSales:
		s.State = SaleStateNone
	}
	s.Version = v
	return nil
}

// MigrateTo upgrades the sale one version at a time until it reaches target.
func (s *Sale) MigrateTo(target SaleVersion) error {
	if target < s.Version {
		return fmt.Errorf("%w: %s to %s", ErrInvalidMigration, s.Version, target)
	}
	for s.Version < target {
		if err := s.MigrateToVersion(s.Version + 1); err != nil {
			return err
		}
	}
	return nil
}

// EnsureValid checks the static invariants of the sale.
func (s *Sale) EnsureValid() error {
	if !ValidAssetCode(s.BaseAsset) || !ValidAssetCode(s.DefaultQuoteAsset) {
		return ErrInvalidAssetCode
	}
	if s.BaseAsset == s.DefaultQuoteAsset {
		return ErrBaseIsQuote
	}
	if s.EndTime <= s.StartTime {
		return ErrInvalidSaleTime
	}
	if s.SoftCap < 0 || s.SoftCap > s.HardCap {
		return ErrInvalidSaleCaps
	}
	if s.Details != "" && !json.Valid([]byte(s.Details)) {
		return ErrInvalidDetails
	}
	if s.CurrentCapInBase < 0 || (!s.IsCrowdFunding() && s.CurrentCapInBase > s.MaxAmountToBeSold) {
		return ErrCapExceedsMax
	}
	if len(s.QuoteAssets) == 0 {
		return ErrNoQuoteAssets
	}
	seen := make(map[string]struct{}, len(s.QuoteAssets))
	defaultListed := false
	for _, qa := range s.QuoteAssets {
		if !ValidAssetCode(qa.QuoteAsset) {
			return ErrInvalidAssetCode
		}
		if qa.QuoteAsset == s.BaseAsset {
			return ErrBaseIsQuote
		}
		if qa.Price <= 0 {
			return ErrInvalidQuotePrice
		}
		if _, dup := seen[qa.QuoteAsset]; dup {
			return ErrDuplicateQuoteAsset
		}
		seen[qa.QuoteAsset] = struct{}{}
		if qa.QuoteAsset == s.DefaultQuoteAsset {
			defaultListed = true
		}
	}
	if !defaultListed {
		return ErrDefaultQuoteNotListed
	}
	return nil
}

// Clone returns a deep copy of the sale.
func (s *Sale) Clone() *Sale {
	c := *s
	c.QuoteAssets = slices.Clone(s.QuoteAssets)
	return &c
}
