package fee

import (
	"errors"
	"fmt"
	"math"

	"github.com/LeJamon/goTokend/internal/core/amount"
	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
)

// Rule is one row of a fee table. Empty AccountID and nil AccountType match
// any account.
type Rule struct {
	Type        Type
	Asset       string
	AccountID   string
	AccountType *entry.AccountType
	Subtype     int64
	LowerBound  int64
	UpperBound  int64
	Fee         Fee
}

func (r *Rule) specificity() int {
	switch {
	case r.AccountID != "":
		return 2
	case r.AccountType != nil:
		return 1
	}
	return 0
}

func (r *Rule) matches(q Query) bool {
	if r.Type != q.Type || r.Asset != q.Asset || r.Subtype != q.Subtype {
		return false
	}
	if r.AccountID != "" && r.AccountID != q.AccountID {
		return false
	}
	if r.AccountType != nil && *r.AccountType != q.AccountType {
		return false
	}
	return q.Amount >= r.LowerBound && q.Amount <= r.UpperBound
}

// Table is the configuration-backed Lookup. For a query, the rule naming
// the account wins over one naming the account type, which wins over a
// generic rule. Among equally specific rules the first one listed wins.
type Table struct {
	rules []Rule
}

var ErrInvalidRule = errors.New("invalid fee rule")

// NewTable validates rules and builds a table. A zero UpperBound means the
// rule has no upper bound.
func NewTable(rules []Rule) (*Table, error) {
	t := &Table{rules: make([]Rule, 0, len(rules))}
	for i, r := range rules {
		if r.UpperBound == 0 {
			r.UpperBound = math.MaxInt64
		}
		switch {
		case typeNames[r.Type] == "":
			return nil, fmt.Errorf("%w %d: unknown type %d", ErrInvalidRule, i, r.Type)
		case !entry.ValidAssetCode(r.Asset):
			return nil, fmt.Errorf("%w %d: invalid asset %q", ErrInvalidRule, i, r.Asset)
		case r.LowerBound < 0 || r.LowerBound > r.UpperBound:
			return nil, fmt.Errorf("%w %d: invalid bounds", ErrInvalidRule, i)
		case r.Fee.Fixed < 0:
			return nil, fmt.Errorf("%w %d: negative fixed fee", ErrInvalidRule, i)
		case r.Fee.Percent < 0 || r.Fee.Percent > amount.ONE:
			return nil, fmt.Errorf("%w %d: %w", ErrInvalidRule, i, ErrInvalidPercent)
		}
		t.rules = append(t.rules, r)
	}
	return t, nil
}

// Lookup implements Lookup.
func (t *Table) Lookup(q Query) (Fee, error) {
	best := -1
	var found Fee
	for i := range t.rules {
		r := &t.rules[i]
		if !r.matches(q) {
			continue
		}
		if s := r.specificity(); s > best {
			best = s
			found = r.Fee
		}
	}
	return found, nil
}

// Len returns the number of rules.
func (t *Table) Len() int {
	return len(t.rules)
}
