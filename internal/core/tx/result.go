package tx

import "fmt"

// Result represents a request result code
type Result int

// Request result codes, organized by family:
// tes success, tec rejected by ledger rules, tef aborted, tem malformed.
// Only tesSUCCESS changes the ledger.
const (
	TesSUCCESS Result = 0

	// tec codes (100-199): the request was well formed but ledger state or
	// business rules reject it
	TecBALANCE_NOT_FOUND          Result = 100
	TecBALANCE_ASSET_MISMATCH     Result = 101
	TecORDER_BOOK_NOT_FOUND       Result = 102
	TecASSET_PAIR_NOT_TRADABLE    Result = 103
	TecPRICE_MISMATCH             Result = 104
	TecCANT_PARTICIPATE_OWN_SALE  Result = 105
	TecREQUIRES_KYC               Result = 106
	TecSALE_NOT_STARTED           Result = 107
	TecSALE_ENDED                 Result = 108
	TecOVERFLOW                   Result = 109
	TecFEE_OVERFLOW               Result = 110
	TecINVALID_PERCENT_FEE        Result = 111
	TecFEE_MISMATCH               Result = 112
	TecUNDERFUNDED                Result = 113
	TecCROSS_SELF                 Result = 114
	TecSALE_CAP_EXCEEDED          Result = 115
	TecOFFER_NOT_FOUND            Result = 116
	TecSALE_SELL_FORBIDDEN        Result = 117
	TecACCOUNT_BLOCKED            Result = 118
	TecSALE_NOT_FOUND             Result = 119
	TecSALE_NOT_READY             Result = 120
	TecACCOUNT_NOT_FOUND          Result = 121
	TecASSET_NOT_FOUND            Result = 122
	TecNOT_ASSET_OWNER            Result = 123
	TecINSUFFICIENT_ISSUANCE      Result = 124
	TecNOT_OFFER_OWNER            Result = 125

	// tef codes (-199 to -100): processing aborted, the ledger is untouched
	TefINTERNAL  Result = -199
	TefINVARIANT Result = -198

	// tem codes (-299 to -200): malformed request
	TemMALFORMED                Result = -299
	TemBAD_AMOUNT               Result = -298
	TemBAD_PRICE                Result = -297
	TemBAD_FEE                  Result = -296
	TemSAME_BALANCE             Result = -295
	TemOFFER_UPDATE_NOT_ALLOWED Result = -294
	TemBAD_ASSET                Result = -293
	TemBAD_SOURCE               Result = -292
	TemSALE_BAD_TIMES           Result = -291
	TemSALE_BAD_CAPS            Result = -290
	TemSALE_NO_QUOTE_ASSETS     Result = -289
	TemSALE_BAD_DETAILS         Result = -288
	TemSALE_BAD_TYPE            Result = -287
	TemUNKNOWN                  Result = -286
)

var resultNames = map[Result]string{
	TesSUCCESS: "tesSUCCESS",

	TecBALANCE_NOT_FOUND:         "tecBALANCE_NOT_FOUND",
	TecBALANCE_ASSET_MISMATCH:    "tecBALANCE_ASSET_MISMATCH",
	TecORDER_BOOK_NOT_FOUND:      "tecORDER_BOOK_NOT_FOUND",
	TecASSET_PAIR_NOT_TRADABLE:   "tecASSET_PAIR_NOT_TRADABLE",
	TecPRICE_MISMATCH:            "tecPRICE_MISMATCH",
	TecCANT_PARTICIPATE_OWN_SALE: "tecCANT_PARTICIPATE_OWN_SALE",
	TecREQUIRES_KYC:              "tecREQUIRES_KYC",
	TecSALE_NOT_STARTED:          "tecSALE_NOT_STARTED",
	TecSALE_ENDED:                "tecSALE_ENDED",
	TecOVERFLOW:                  "tecOVERFLOW",
	TecFEE_OVERFLOW:              "tecFEE_OVERFLOW",
	TecINVALID_PERCENT_FEE:       "tecINVALID_PERCENT_FEE",
	TecFEE_MISMATCH:              "tecFEE_MISMATCH",
	TecUNDERFUNDED:               "tecUNDERFUNDED",
	TecCROSS_SELF:                "tecCROSS_SELF",
	TecSALE_CAP_EXCEEDED:         "tecSALE_CAP_EXCEEDED",
	TecOFFER_NOT_FOUND:           "tecOFFER_NOT_FOUND",
	TecSALE_SELL_FORBIDDEN:       "tecSALE_SELL_FORBIDDEN",
	TecACCOUNT_BLOCKED:           "tecACCOUNT_BLOCKED",
	TecSALE_NOT_FOUND:            "tecSALE_NOT_FOUND",
	TecSALE_NOT_READY:            "tecSALE_NOT_READY",
	TecACCOUNT_NOT_FOUND:         "tecACCOUNT_NOT_FOUND",
	TecASSET_NOT_FOUND:           "tecASSET_NOT_FOUND",
	TecNOT_ASSET_OWNER:           "tecNOT_ASSET_OWNER",
	TecINSUFFICIENT_ISSUANCE:     "tecINSUFFICIENT_ISSUANCE",
	TecNOT_OFFER_OWNER:           "tecNOT_OFFER_OWNER",

	TefINTERNAL:  "tefINTERNAL",
	TefINVARIANT: "tefINVARIANT",

	TemMALFORMED:                "temMALFORMED",
	TemBAD_AMOUNT:               "temBAD_AMOUNT",
	TemBAD_PRICE:                "temBAD_PRICE",
	TemBAD_FEE:                  "temBAD_FEE",
	TemSAME_BALANCE:             "temSAME_BALANCE",
	TemOFFER_UPDATE_NOT_ALLOWED: "temOFFER_UPDATE_NOT_ALLOWED",
	TemBAD_ASSET:                "temBAD_ASSET",
	TemBAD_SOURCE:               "temBAD_SOURCE",
	TemSALE_BAD_TIMES:           "temSALE_BAD_TIMES",
	TemSALE_BAD_CAPS:            "temSALE_BAD_CAPS",
	TemSALE_NO_QUOTE_ASSETS:     "temSALE_NO_QUOTE_ASSETS",
	TemSALE_BAD_DETAILS:         "temSALE_BAD_DETAILS",
	TemSALE_BAD_TYPE:            "temSALE_BAD_TYPE",
	TemUNKNOWN:                  "temUNKNOWN",
}

// String returns the string representation of the result code
func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(r))
}

// ResultFromString returns the result code for its name.
func ResultFromString(name string) (Result, bool) {
	for r, n := range resultNames {
		if n == name {
			return r, true
		}
	}
	return 0, false
}

// MarshalText renders the result by name.
func (r Result) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// IsSuccess returns true if the result is tesSUCCESS
func (r Result) IsSuccess() bool {
	return r == TesSUCCESS
}

// IsTec returns true if this is a tec code
func (r Result) IsTec() bool {
	return r >= 100 && r < 200
}

// IsTef returns true if this is a tef (abort) code
func (r Result) IsTef() bool {
	return r >= -199 && r <= -100
}

// IsTem returns true if this is a tem (malformed) code
func (r Result) IsTem() bool {
	return r >= -299 && r <= -200
}

// Category classifies a result.
type Category int

const (
	CategoryNone Category = iota
	CategoryMalformed
	CategoryStateInconsistency
	CategoryBusinessRule
	CategoryArithmetic
	CategoryFatal
)

func (c Category) String() string {
	switch c {
	case CategoryNone:
		return "none"
	case CategoryMalformed:
		return "malformed"
	case CategoryStateInconsistency:
		return "state_inconsistency"
	case CategoryBusinessRule:
		return "business_rule"
	case CategoryArithmetic:
		return "arithmetic"
	case CategoryFatal:
		return "fatal"
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Category returns the class of failure the result belongs to.
func (r Result) Category() Category {
	switch {
	case r.IsSuccess():
		return CategoryNone
	case r.IsTem():
		return CategoryMalformed
	case r.IsTef():
		return CategoryFatal
	}
	switch r {
	case TecBALANCE_NOT_FOUND, TecBALANCE_ASSET_MISMATCH, TecORDER_BOOK_NOT_FOUND,
		TecOFFER_NOT_FOUND, TecSALE_NOT_FOUND, TecACCOUNT_NOT_FOUND, TecASSET_NOT_FOUND:
		return CategoryStateInconsistency
	case TecOVERFLOW, TecFEE_OVERFLOW:
		return CategoryArithmetic
	}
	return CategoryBusinessRule
}

// Message returns a human-readable message for the result
func (r Result) Message() string {
	switch r {
	case TesSUCCESS:
		return "The request was applied."
	case TecUNDERFUNDED:
		return "Insufficient available balance."
	case TecCROSS_SELF:
		return "Offer would cross an offer of the same account."
	case TecSALE_CAP_EXCEEDED:
		return "Participation would exceed the sale hard cap."
	case TecSALE_NOT_READY:
		return "Sale is open and its caps did not change."
	case TecSALE_NOT_FOUND:
		return "Sale does not exist or was already settled."
	case TecOVERFLOW:
		return "Amount overflow."
	case TecFEE_OVERFLOW:
		return "Fee overflow."
	case TefINVARIANT:
		return "Ledger invariant violated; request aborted."
	case TefINTERNAL:
		return "Internal error; request aborted."
	case TemBAD_AMOUNT:
		return "Amounts must be positive."
	case TemBAD_PRICE:
		return "Price must be positive."
	case TemSAME_BALANCE:
		return "Base and quote balance must differ."
	}
	return r.String()
}
