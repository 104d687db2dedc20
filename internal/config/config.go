// Package config loads the tokend node configuration.
package config

import (
	"time"

	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
	"github.com/LeJamon/goTokend/internal/storage/kvstore"
)

// Config represents the complete tokend configuration
type Config struct {
	// Database selects the ledger storage backend
	Database kvstore.Config `toml:"database" mapstructure:"database"`

	Ledger LedgerConfig `toml:"ledger" mapstructure:"ledger"`
	Log    LogConfig    `toml:"log" mapstructure:"log"`

	// Fees is the fee table, most specific rule first wins
	Fees []FeeRuleConfig `toml:"fees" mapstructure:"fees"`

	// Genesis file path (JSON format), read by tokend init
	GenesisFile string `toml:"genesis_file" mapstructure:"genesis_file"`

	configPath string `toml:"-" mapstructure:"-"`
}

// LedgerConfig represents the [ledger] section
type LedgerConfig struct {
	// Version is the sale version new sales are stored at
	Version int `toml:"version" mapstructure:"version"`

	// CommissionAccount receives every fee
	CommissionAccount string `toml:"commission_account" mapstructure:"commission_account"`

	// SaleCheckInterval is how often the node evaluates open sales
	SaleCheckInterval time.Duration `toml:"sale_check_interval" mapstructure:"sale_check_interval"`
}

// SaleVersion returns Version as a sale version.
func (l LedgerConfig) SaleVersion() entry.SaleVersion {
	return entry.SaleVersion(l.Version)
}

// GetConfigPath returns the path to the configuration file, empty when only
// defaults and the environment were used.
func (c *Config) GetConfigPath() string {
	return c.configPath
}
