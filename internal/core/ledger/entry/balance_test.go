package entry

import (
	"math"
	"testing"

	"github.com/LeJamon/goTokend/internal/core/amount"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceLockUnlock(t *testing.T) {
	b := &Balance{Amount: 100}

	require.NoError(t, b.Lock(60))
	assert.Equal(t, int64(40), b.Amount)
	assert.Equal(t, int64(60), b.Locked)

	require.ErrorIs(t, b.Lock(41), ErrUnderfunded)

	require.NoError(t, b.Unlock(10))
	assert.Equal(t, int64(50), b.Amount)
	assert.Equal(t, int64(50), b.Locked)

	require.ErrorIs(t, b.Unlock(51), ErrLockedUnderflow)

	require.NoError(t, b.ChargeFromLocked(50))
	assert.Equal(t, int64(0), b.Locked)
	require.ErrorIs(t, b.ChargeFromLocked(1), ErrLockedUnderflow)

	total, ok := b.Total()
	require.True(t, ok)
	assert.Equal(t, int64(50), total)
}

func TestBalanceCreditDebit(t *testing.T) {
	b := &Balance{Amount: math.MaxInt64 - 1}
	require.ErrorIs(t, b.Credit(2), amount.ErrOverflow)
	require.NoError(t, b.Credit(1))

	b = &Balance{Amount: 5}
	require.ErrorIs(t, b.Debit(6), ErrUnderfunded)
	require.NoError(t, b.Debit(5))
	assert.Equal(t, int64(0), b.Amount)

	require.ErrorIs(t, b.Credit(-1), ErrNegativeAmount)
	require.ErrorIs(t, b.Lock(-1), ErrNegativeAmount)
}

func TestAssetIssuance(t *testing.T) {
	a := &Asset{Code: "TKN", MaxIssuanceAmount: 1000, AvailableForIssuance: 1000}

	require.NoError(t, a.LockIssuance(400))
	require.ErrorIs(t, a.LockIssuance(601), ErrInsufficientIssuance)
	require.NoError(t, a.IssueFromPending(150))
	require.NoError(t, a.ReleaseIssuance(250))
	require.ErrorIs(t, a.ReleaseIssuance(1), ErrPendingUnderflow)

	assert.Equal(t, int64(850), a.AvailableForIssuance)
	assert.Equal(t, int64(0), a.PendingIssuance)
	assert.Equal(t, int64(150), a.Issued)
	assert.Equal(t, a.MaxIssuanceAmount, a.AvailableForIssuance+a.PendingIssuance+a.Issued)
}

func TestValidAssetCode(t *testing.T) {
	assert.True(t, ValidAssetCode("USD"))
	assert.True(t, ValidAssetCode("Token2024"))
	assert.False(t, ValidAssetCode(""))
	assert.False(t, ValidAssetCode("US D"))
	assert.False(t, ValidAssetCode("ABCDEFGHIJKLMNOPQ"))
}

func TestOfferLockedAmount(t *testing.T) {
	buy := &Offer{IsBuy: true, QuoteAmount: 200, Fee: 3, BaseAmount: 100, QuoteBalance: "q", BaseBalance: "b"}
	locked, ok := buy.LockedAmount()
	require.True(t, ok)
	assert.Equal(t, int64(203), locked)
	assert.Equal(t, "q", buy.LockedBalance())

	sell := &Offer{BaseAmount: 100, QuoteAmount: 200, QuoteBalance: "q", BaseBalance: "b"}
	locked, ok = sell.LockedAmount()
	require.True(t, ok)
	assert.Equal(t, int64(100), locked)
	assert.Equal(t, "b", sell.LockedBalance())
}

func TestOfferCrosses(t *testing.T) {
	maker := &Offer{Price: 2_0000}
	assert.True(t, (&Offer{IsBuy: true, Price: 2_0000}).Crosses(maker))
	assert.True(t, (&Offer{IsBuy: true, Price: 3_0000}).Crosses(maker))
	assert.False(t, (&Offer{IsBuy: true, Price: 1_9999}).Crosses(maker))

	maker.IsBuy = true
	assert.True(t, (&Offer{Price: 1_0000}).Crosses(maker))
	assert.False(t, (&Offer{Price: 2_0001}).Crosses(maker))
	assert.False(t, (&Offer{IsBuy: true, Price: 2_0000}).Crosses(maker))
}
