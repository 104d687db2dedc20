package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goTokend/internal/core/fee"
	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tokend.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
genesis_file = "/etc/tokend/genesis.json"

[database]
type = "leveldb"
path = "/tmp/test/db"
cache_size = 128
compression = "none"

[ledger]
version = 1
commission_account = "fees"
sale_check_interval = "5s"

[log]
level = "debug"
format = "json"

[[fees]]
type = "offer_fee"
asset = "USD"
percent = "0.5"

[[fees]]
type = "invest_fee"
asset = "USD"
account_type = "syndicate"
fixed = "2.5"
percent = 1
lower_bound = "100"
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, config)

	assert.Equal(t, path, config.GetConfigPath())
	assert.Equal(t, "leveldb", config.Database.Backend)
	assert.Equal(t, "/tmp/test/db", config.Database.Path)
	assert.Equal(t, 128, config.Database.CacheSize)
	assert.Equal(t, "none", config.Database.Compression)

	assert.Equal(t, entry.SaleVersionTypedSale, config.Ledger.SaleVersion())
	assert.Equal(t, "fees", config.Ledger.CommissionAccount)
	assert.Equal(t, 5*time.Second, config.Ledger.SaleCheckInterval)
	assert.True(t, config.Log.IsJSON())
	assert.Equal(t, "/etc/tokend/genesis.json", config.GenesisFile)

	require.Len(t, config.Fees, 2)
	r, err := config.Fees[1].Rule()
	require.NoError(t, err)
	assert.Equal(t, fee.InvestFee, r.Type)
	require.NotNil(t, r.AccountType)
	assert.Equal(t, entry.AccountSyndicate, *r.AccountType)
	assert.Equal(t, int64(25000), r.Fee.Fixed)
	assert.Equal(t, int64(100), r.Fee.Percent)
	assert.Equal(t, int64(1_000_000), r.LowerBound)

	table, err := config.FeeTable()
	require.NoError(t, err)
	f, err := table.Lookup(fee.Query{Type: fee.OfferFee, Asset: "USD", Amount: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(50), f.Percent)
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "pebble", config.Database.Backend)
	assert.Equal(t, "lz4", config.Database.Compression)
	assert.Equal(t, entry.LatestSaleVersion, config.Ledger.SaleVersion())
	assert.Equal(t, DefaultCommissionAccount, config.Ledger.CommissionAccount)
	assert.Equal(t, DefaultSaleCheckInterval, config.Ledger.SaleCheckInterval)
	assert.Equal(t, "info", config.Log.Level)
	assert.Empty(t, config.Fees)
	assert.Empty(t, config.GetConfigPath())
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("TOKEND_LEDGER_COMMISSION_ACCOUNT", "treasury")
	t.Setenv("TOKEND_DATABASE_CACHE_SIZE", "64")
	t.Setenv("TOKEND_LOG_LEVEL", "warn")

	config, err := LoadConfig(writeConfig(t, `
[ledger]
commission_account = "fees"
`))
	require.NoError(t, err)
	assert.Equal(t, "treasury", config.Ledger.CommissionAccount)
	assert.Equal(t, 64, config.Database.CacheSize)
	assert.Equal(t, "warn", config.Log.Level)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestConfigValidationErrors(t *testing.T) {
	valid := func() *Config {
		c, err := LoadConfig("")
		require.NoError(t, err)
		return c
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"unknown backend", func(c *Config) { c.Database.Backend = "rocksdb" }, "database validation failed"},
		{"no path", func(c *Config) { c.Database.Path = "" }, "path must be specified"},
		{"bad compression", func(c *Config) { c.Database.Compression = "zstd" }, "database validation failed"},
		{"future version", func(c *Config) { c.Ledger.Version = 3 }, "version must be between 0 and 2"},
		{"no commission", func(c *Config) { c.Ledger.CommissionAccount = "" }, "commission_account is required"},
		{"fast sweep", func(c *Config) { c.Ledger.SaleCheckInterval = time.Millisecond }, "sale_check_interval"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "invalid level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "invalid format"},
		{"bad genesis", func(c *Config) { c.GenesisFile = "genesis.toml" }, "genesis_file"},
		{"unknown fee type", func(c *Config) {
			c.Fees = []FeeRuleConfig{{Type: "gas_fee", Asset: "USD"}}
		}, "unknown fee type"},
		{"bad fee asset", func(c *Config) {
			c.Fees = []FeeRuleConfig{{Type: "offer_fee", Asset: ""}}
		}, "invalid asset"},
		{"fee above 100%", func(c *Config) {
			c.Fees = []FeeRuleConfig{{Type: "offer_fee", Asset: "USD", Percent: "150"}}
		}, "percent fee out of range"},
		{"fee too precise", func(c *Config) {
			c.Fees = []FeeRuleConfig{{Type: "offer_fee", Asset: "USD", Fixed: "0.00001"}}
		}, "fixed"},
		{"unknown account type", func(c *Config) {
			c.Fees = []FeeRuleConfig{{Type: "offer_fee", Asset: "USD", AccountType: "vip"}}
		}, "fees validation failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := ValidateConfig(c)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
