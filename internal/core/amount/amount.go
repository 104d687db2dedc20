// Package amount implements the fixed-point arithmetic shared by balances,
// prices and fee rates.
package amount

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// ONE is the integer scale representing 1.0 for amounts, prices and
// percent rates.
const ONE int64 = 10000

// decimals is log10(ONE).
const decimals = 4

// Rounding selects the direction BigDivide rounds a non-exact quotient.
type Rounding int

const (
	RoundDown Rounding = iota
	RoundUp
)

var (
	// ErrOverflow is returned when a result does not fit into int64.
	ErrOverflow = errors.New("amount overflow")

	// ErrPrecision is returned when a decimal has more fractional digits than ONE allows.
	ErrPrecision = errors.New("amount has too many fractional digits")
)

var bigOne = big.NewInt(1)

// BigDivide computes a*b/c using a wide intermediate product.
// It returns false if any argument is out of domain (a or b negative,
// c not positive) or the result does not fit into int64.
func BigDivide(a, b, c int64, rounding Rounding) (int64, bool) {
	if a < 0 || b < 0 || c <= 0 {
		return 0, false
	}

	x := new(big.Int).Mul(big.NewInt(a), big.NewInt(b))
	q, m := new(big.Int).QuoRem(x, big.NewInt(c), new(big.Int))
	if rounding == RoundUp && m.Sign() != 0 {
		q.Add(q, bigOne)
	}
	if !q.IsInt64() {
		return 0, false
	}
	return q.Int64(), true
}

// SafeSum adds a and b, reporting false on int64 overflow.
func SafeSum(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

// QuoteAmount converts a base amount into quote units at price.
// The result is rounded up so an amount locked against it always covers
// the trade.
func QuoteAmount(base, price int64) (int64, bool) {
	return BigDivide(base, price, ONE, RoundUp)
}

// BaseAmount converts a quote amount into base units at price, rounding down.
func BaseAmount(quote, price int64) (int64, bool) {
	if price <= 0 {
		return 0, false
	}
	return BigDivide(quote, ONE, price, RoundDown)
}

// Parse converts a decimal string such as "12.5" into fixed-point units.
func Parse(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return FromDecimal(d)
}

// FromDecimal converts d into fixed-point units.
func FromDecimal(d decimal.Decimal) (int64, error) {
	scaled := d.Shift(decimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, ErrPrecision
	}
	v := scaled.BigInt()
	if !v.IsInt64() {
		return 0, ErrOverflow
	}
	return v.Int64(), nil
}

// ToDecimal returns the decimal value of a fixed-point amount.
func ToDecimal(v int64) decimal.Decimal {
	return decimal.New(v, -decimals)
}

// Format renders a fixed-point amount with all fractional digits.
func Format(v int64) string {
	return ToDecimal(v).StringFixed(decimals)
}
