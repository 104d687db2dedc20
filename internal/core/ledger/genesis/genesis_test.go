package genesis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goTokend/internal/core/amount"
	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
	"github.com/LeJamon/goTokend/internal/core/tx"
	"github.com/LeJamon/goTokend/internal/storage/kvstore"
)

func newStore(t *testing.T) (*tx.LedgerStore, *tx.ApplyStateTable, *kvstore.Store) {
	t.Helper()
	base, err := kvstore.Open(kvstore.MemoryConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = base.Close() })
	table := tx.NewApplyStateTable(base)
	return tx.NewLedgerStore(table), table, base
}

const sampleGenesis = `{
  "close_time": 1700000000,
  "accounts": [
    {"id": "issuer", "type": "syndicate"},
    {"id": "alice", "type": "general"}
  ],
  "assets": [
    {"code": "TKN", "owner": "issuer", "max_issuance": "1000000", "requires_kyc": true},
    {"code": "USD", "owner": "issuer", "max_issuance": "50000.5"}
  ],
  "pairs": [
    {"base": "TKN", "quote": "USD", "price": "1.25", "tradable": true}
  ],
  "balances": [
    {"account": "alice", "asset": "USD", "amount": "1200.75"}
  ]
}`

func TestCreateGenesisLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleGenesis), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Accounts, 2)

	s, table, base := newStore(t)
	require.NoError(t, Create(s, cfg, entry.LatestSaleVersion, "commission"))
	require.NoError(t, table.Apply(base))

	s = tx.NewLedgerStore(tx.NewApplyStateTable(base))
	h, err := s.Header()
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), h.CloseTime)
	assert.Equal(t, entry.LatestSaleVersion, h.Version)

	comm, err := s.LoadAccount("commission")
	require.NoError(t, err)
	assert.Equal(t, entry.AccountCommission, comm.AccountType)

	tkn, err := s.LoadAsset("TKN")
	require.NoError(t, err)
	assert.True(t, tkn.RequiresKYC())
	assert.Equal(t, 1000000*amount.ONE, tkn.AvailableForIssuance)

	usd, err := s.LoadAsset("USD")
	require.NoError(t, err)
	assert.Equal(t, int64(12007500), usd.Issued)
	assert.Equal(t, usd.MaxIssuanceAmount, usd.AvailableForIssuance+usd.PendingIssuance+usd.Issued)

	pair, err := s.LoadAssetPair("TKN", "USD")
	require.NoError(t, err)
	require.NotNil(t, pair)
	assert.True(t, pair.IsTradable())
	assert.Equal(t, int64(12500), pair.CurrentPrice)

	b, err := s.LoadBalanceFor("alice", "USD")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, int64(12007500), b.Amount)
}

func TestCreateTwiceFails(t *testing.T) {
	s, _, _ := newStore(t)
	require.NoError(t, Create(s, Config{}, entry.LatestSaleVersion, "commission"))
	assert.ErrorIs(t, Create(s, Config{}, entry.LatestSaleVersion, "commission"), ErrAlreadyInitialized)
}

func TestCreateRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{
			name: "unknown account type",
			cfg:  Config{Accounts: []Account{{ID: "a", Type: "wizard"}}},
		},
		{
			name: "asset owner missing",
			cfg:  Config{Assets: []Asset{{Code: "TKN", Owner: "nobody"}}},
		},
		{
			name: "balance beyond issuance",
			cfg: Config{
				Accounts: []Account{{ID: "a", Type: "general"}},
				Assets:   []Asset{{Code: "TKN", Owner: "a", MaxIssuance: amount.ToDecimal(10)}},
				Balances: []Balance{{Account: "a", Asset: "TKN", Amount: amount.ToDecimal(11)}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newStore(t)
			assert.Error(t, Create(s, tt.cfg, entry.LatestSaleVersion, "commission"))
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
