package amount

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBigDivide(t *testing.T) {
	tests := []struct {
		name     string
		a, b, c  int64
		rounding Rounding
		want     int64
		ok       bool
	}{
		{"exact", 10 * ONE, 2 * ONE, ONE, RoundDown, 20 * ONE, true},
		{"round down", 1, 1, 3, RoundDown, 0, true},
		{"round up", 1, 1, 3, RoundUp, 1, true},
		{"exact never rounds up", 6, 1, 3, RoundUp, 2, true},
		{"wide intermediate", math.MaxInt64, ONE, ONE, RoundDown, math.MaxInt64, true},
		{"overflow", math.MaxInt64, 2, 1, RoundDown, 0, false},
		{"negative operand", -1, 1, 1, RoundDown, 0, false},
		{"zero divisor", 1, 1, 0, RoundDown, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BigDivide(tt.a, tt.b, tt.c, tt.rounding)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSafeSum(t *testing.T) {
	v, ok := SafeSum(1, 2)
	require.True(t, ok)
	require.Equal(t, int64(3), v)

	_, ok = SafeSum(math.MaxInt64, 1)
	require.False(t, ok)

	_, ok = SafeSum(math.MinInt64, -1)
	require.False(t, ok)
}

func TestQuoteAndBaseAmount(t *testing.T) {
	// 3 units at 0.3333 rounds the quote up.
	q, ok := QuoteAmount(3*ONE, 3333)
	require.True(t, ok)
	require.Equal(t, int64(9999), q)

	q, ok = QuoteAmount(1, 3333)
	require.True(t, ok)
	require.Equal(t, int64(1), q)

	b, ok := BaseAmount(200*ONE, 2*ONE)
	require.True(t, ok)
	require.Equal(t, 100*ONE, b)

	_, ok = BaseAmount(1, 0)
	require.False(t, ok)
}

func TestParseAndFormat(t *testing.T) {
	v, err := Parse("12.5")
	require.NoError(t, err)
	require.Equal(t, int64(125000), v)
	require.Equal(t, "12.5000", Format(v))

	v, err = Parse("-0.0001")
	require.NoError(t, err)
	require.Equal(t, int64(-1), v)

	_, err = Parse("0.00001")
	require.ErrorIs(t, err, ErrPrecision)

	_, err = Parse("99999999999999999999")
	require.ErrorIs(t, err, ErrOverflow)

	_, err = Parse("abc")
	require.Error(t, err)
}
