package fee

import (
	"math"
	"testing"

	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name    string
		amount  int64
		percent int64
		want    int64
		err     error
	}{
		{"zero percent", 1000, 0, 0, nil},
		{"zero amount", 0, 100, 0, nil},
		{"exact", 200_0000, 100, 2_0000, nil},        // 1% of 200
		{"rounds up", 3, 5000, 2, nil},                // 50% of 3 units is 1.5
		{"one unit at tiny rate", 1, 1, 1, nil},       // never under-collects
		{"hundred percent", 12345, 1_0000, 12345, nil},
		{"above hundred", 10, 1_0001, 0, ErrInvalidPercent},
		{"negative percent", 10, -1, 0, ErrInvalidPercent},
		{"no overflow near max", math.MaxInt64, 1_0000, math.MaxInt64, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Calculate(tt.amount, tt.percent)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFeeFor(t *testing.T) {
	f := Fee{Fixed: 5, Percent: 100}
	got, err := f.For(1000)
	require.NoError(t, err)
	assert.Equal(t, int64(15), got)

	_, err = Fee{Fixed: math.MaxInt64, Percent: 1_0000}.For(10)
	require.ErrorIs(t, err, ErrOverflow)

	assert.True(t, Fee{}.IsZero())
}

func TestTableSpecificity(t *testing.T) {
	general := entry.AccountGeneral
	table, err := NewTable([]Rule{
		{Type: OfferFee, Asset: "USD", Fee: Fee{Percent: 100}},
		{Type: OfferFee, Asset: "USD", AccountType: &general, Fee: Fee{Percent: 50}},
		{Type: OfferFee, Asset: "USD", AccountID: "alice", Fee: Fee{Percent: 10}},
		{Type: OfferFee, Asset: "USD", AccountID: "bob", LowerBound: 1000, Fee: Fee{Percent: 20}},
		{Type: InvestFee, Asset: "USD", Fee: Fee{Fixed: 7, Percent: 200}},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, table.Len())

	lookup := func(q Query) Fee {
		f, err := table.Lookup(q)
		require.NoError(t, err)
		return f
	}

	assert.Equal(t, Fee{Percent: 10}, lookup(Query{Type: OfferFee, Asset: "USD", AccountID: "alice", AccountType: entry.AccountGeneral}))
	assert.Equal(t, Fee{Percent: 50}, lookup(Query{Type: OfferFee, Asset: "USD", AccountID: "carol", AccountType: entry.AccountGeneral}))
	assert.Equal(t, Fee{Percent: 100}, lookup(Query{Type: OfferFee, Asset: "USD", AccountID: "dave", AccountType: entry.AccountSyndicate}))

	// bob's rule only applies from 1000 upward
	assert.Equal(t, Fee{Percent: 20}, lookup(Query{Type: OfferFee, Asset: "USD", AccountID: "bob", AccountType: entry.AccountSyndicate, Amount: 1000}))
	assert.Equal(t, Fee{Percent: 100}, lookup(Query{Type: OfferFee, Asset: "USD", AccountID: "bob", AccountType: entry.AccountSyndicate, Amount: 999}))

	assert.Equal(t, Fee{Fixed: 7, Percent: 200}, lookup(Query{Type: InvestFee, Asset: "USD"}))
	assert.Equal(t, Fee{}, lookup(Query{Type: CapitalDeploymentFee, Asset: "USD"}))
	assert.Equal(t, Fee{}, lookup(Query{Type: OfferFee, Asset: "EUR"}))
}

func TestNewTableRejectsInvalidRules(t *testing.T) {
	bad := []Rule{
		{Type: 99, Asset: "USD"},
		{Type: OfferFee, Asset: ""},
		{Type: OfferFee, Asset: "USD", LowerBound: 10, UpperBound: 5},
		{Type: OfferFee, Asset: "USD", Fee: Fee{Fixed: -1}},
		{Type: OfferFee, Asset: "USD", Fee: Fee{Percent: 1_0001}},
	}
	for _, r := range bad {
		_, err := NewTable([]Rule{r})
		require.ErrorIs(t, err, ErrInvalidRule)
	}
}

func TestParseType(t *testing.T) {
	for typ, name := range typeNames {
		got, err := ParseType(name)
		require.NoError(t, err)
		assert.Equal(t, typ, got)
		assert.Equal(t, name, typ.String())
	}
	_, err := ParseType("nope")
	require.Error(t, err)
}
