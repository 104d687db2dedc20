package config

import (
	"fmt"
	"time"

	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
)

// validateDatabase checks the [database] section. The checks live with the
// storage backends.
func validateDatabase(config *Config) error {
	return config.Database.Validate()
}

// Validate performs validation on the [ledger] section
func (l *LedgerConfig) Validate() error {
	if l.Version < int(entry.SaleVersionEmpty) || l.Version > int(entry.LatestSaleVersion) {
		return fmt.Errorf("version must be between %d and %d, got %d",
			entry.SaleVersionEmpty, entry.LatestSaleVersion, l.Version)
	}
	if l.CommissionAccount == "" {
		return fmt.Errorf("commission_account is required")
	}
	if l.SaleCheckInterval < time.Second {
		return fmt.Errorf("sale_check_interval must be at least 1s, got %s", l.SaleCheckInterval)
	}
	return nil
}
