package testing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
	"github.com/LeJamon/goTokend/internal/storage/kvstore"
)

func TestNewTestEnv(t *testing.T) {
	env := NewTestEnv(t)

	h := env.Header()
	assert.Equal(t, DefaultTime.Unix(), h.CloseTime)
	assert.Equal(t, entry.LatestSaleVersion, h.Version)
	assert.Empty(t, env.SaleIDs())
}

func TestFundIssuesFromAsset(t *testing.T) {
	env := NewTestEnv(t)
	env.CreateAccounts("issuer", "alice")
	env.CreateAsset("USD", "issuer", Units(1000), 0)

	id := env.Fund("alice", "USD", Units(250))
	require.NotEmpty(t, id)
	assert.Equal(t, id, env.BalanceID("alice", "USD"))

	RequireBalance(t, env, "alice", "USD", Units(250))
	RequireLocked(t, env, "alice", "USD", 0)

	a := env.Asset("USD")
	assert.Equal(t, Units(250), a.Issued)
	assert.Equal(t, Units(750), a.AvailableForIssuance)
	RequireAssetConserved(t, env, "USD")
}

func TestMissingBalanceIsEmpty(t *testing.T) {
	env := NewTestEnv(t)
	env.CreateAccounts("alice")
	assert.Zero(t, env.Balance("alice", "USD").Amount)
	assert.Zero(t, env.CommissionBalance("USD"))
}

func TestPebbleBackedEnv(t *testing.T) {
	cfg := kvstore.DefaultConfig()
	cfg.Path = t.TempDir()
	env := NewTestEnv(t, WithStorage(cfg))
	env.CreateAccounts("issuer")
	env.CreateAsset("TKN", "issuer", Units(10), 0)
	assert.Equal(t, Units(10), env.Asset("TKN").AvailableForIssuance)
	assert.Equal(t, "pebble", env.Storage().Backend().Name())
}

func TestManualClock(t *testing.T) {
	clock := NewManualClock()
	start := clock.Now()

	clock.Advance(90 * time.Second)
	assert.Equal(t, start.Unix()+90, clock.Unix())

	at := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)
	clock.Set(at)
	assert.Equal(t, at, clock.Now())
}

func TestUnitsAndDec(t *testing.T) {
	assert.Equal(t, int64(10000), Units(1))
	assert.Equal(t, int64(125000), Dec("12.5"))
	assert.Equal(t, "12.5000", Format(Dec("12.5")))
	assert.Panics(t, func() { Dec("1.00001") })
}
