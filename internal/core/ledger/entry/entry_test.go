package entry

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSale() *Sale {
	return &Sale{
		SaleID:            7,
		OwnerID:           "issuer",
		BaseAsset:         "TKN",
		DefaultQuoteAsset: "USD",
		StartTime:         100,
		EndTime:           200,
		SoftCap:           100_0000,
		HardCap:           200_0000,
		MaxAmountToBeSold: 100_0000,
		CurrentCapInBase:  10_0000,
		QuoteAssets: []SaleQuoteAsset{
			{QuoteAsset: "USD", Price: 2_0000, CurrentCap: 20_0000, QuoteBalance: "b3"},
			{QuoteAsset: "BTC", Price: 5000, QuoteBalance: "b2"},
			{QuoteAsset: "ETH", Price: 1_0000, QuoteBalance: "b1"},
		},
		Details:              `{"name":"token sale"}`,
		BaseBalance:          "b9",
		LastCheckedCapInBase: 5_0000,
		Version:              SaleVersionStatableSales,
		SaleType:             SaleTypeFixedPrice,
		State:                SaleStatePromotion,
	}
}

func TestSaleRoundTrip(t *testing.T) {
	s := sampleSale()
	data, err := EncodeSale(s)
	require.NoError(t, err)

	got, err := DecodeSale(data)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	codes := []string{got.QuoteAssets[0].QuoteAsset, got.QuoteAssets[1].QuoteAsset, got.QuoteAssets[2].QuoteAsset}
	assert.Equal(t, []string{"BTC", "ETH", "USD"}, codes)

	// re-encoding the decoded sale is byte identical
	again, err := EncodeSale(got)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, again))
}

func TestSaleEncodingIgnoresInputOrder(t *testing.T) {
	a := sampleSale()
	b := sampleSale()
	b.QuoteAssets[0], b.QuoteAssets[2] = b.QuoteAssets[2], b.QuoteAssets[0]

	da, err := EncodeSale(a)
	require.NoError(t, err)
	db, err := EncodeSale(b)
	require.NoError(t, err)
	assert.Equal(t, da, db)
}

func TestOfferRoundTrip(t *testing.T) {
	o := &Offer{
		OfferID:      42,
		OwnerID:      "alice",
		OrderBookID:  3,
		BaseAsset:    "TKN",
		QuoteAsset:   "USD",
		BaseBalance:  "b1",
		QuoteBalance: "b2",
		BaseAmount:   10_0000,
		QuoteAmount:  20_0000,
		Price:        2_0000,
		Fee:          2000,
		PercentFee:   100,
		FeeLimit:     2500,
		IsBuy:        true,
		CreatedAt:    1234,
		Version:      OfferVersionEmpty,
	}
	data, err := EncodeOffer(o)
	require.NoError(t, err)
	got, err := DecodeOffer(data)
	require.NoError(t, err)
	assert.Equal(t, o, got)
}

func TestDecodeWrongType(t *testing.T) {
	data, err := EncodeBalance(&Balance{BalanceID: "b1", Asset: "USD"})
	require.NoError(t, err)

	_, err = DecodeOffer(data)
	require.ErrorIs(t, err, ErrWrongType)
}

func TestEncodeEmptyPayload(t *testing.T) {
	_, err := Encode(LedgerEntry{Type: TypeOffer})
	require.ErrorIs(t, err, ErrEmptyPayload)
}

func TestRefRoundTrip(t *testing.T) {
	data, err := EncodeRef(TypeBookIndex, &Ref{ID: 9})
	require.NoError(t, err)
	ref, err := DecodeRef(TypeBookIndex, data)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), ref.ID)

	_, err = DecodeRef(TypeAccountBalance, data)
	require.ErrorIs(t, err, ErrWrongType)
}

func TestHeaderNextID(t *testing.T) {
	h := &LedgerHeader{}
	assert.Equal(t, uint64(1), h.NextID(IDOffer))
	assert.Equal(t, uint64(2), h.NextID(IDOffer))
	assert.Equal(t, uint64(1), h.NextID(IDSale))
	assert.Equal(t, uint64(1), h.NextID(IDBalance))
	assert.Equal(t, uint64(2), h.IDs.Offer)
}
