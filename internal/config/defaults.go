package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
	"github.com/LeJamon/goTokend/internal/storage/kvstore"
)

// Defaults for values that are not set anywhere else.
const (
	DefaultCommissionAccount = "commission"
	DefaultSaleCheckInterval = 30 * time.Second
	DefaultConfigFile        = "tokend.toml"
)

// setDefaults registers every key with its default so that environment
// overrides reach keys the file does not mention.
func setDefaults(v *viper.Viper) {
	db := kvstore.DefaultConfig()
	v.SetDefault("database.type", db.Backend)
	v.SetDefault("database.path", db.Path)
	v.SetDefault("database.cache_size", db.CacheSize)
	v.SetDefault("database.compression", db.Compression)

	v.SetDefault("ledger.version", int(entry.LatestSaleVersion))
	v.SetDefault("ledger.commission_account", DefaultCommissionAccount)
	v.SetDefault("ledger.sale_check_interval", DefaultSaleCheckInterval)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("genesis_file", "genesis.json")
}
