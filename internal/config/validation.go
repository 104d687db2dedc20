package config

import (
	"fmt"
	"strings"
)

// ValidateConfig performs validation on the complete configuration
func ValidateConfig(config *Config) error {
	if err := validateDatabase(config); err != nil {
		return fmt.Errorf("database validation failed: %w", err)
	}

	if err := config.Ledger.Validate(); err != nil {
		return fmt.Errorf("ledger validation failed: %w", err)
	}

	if err := config.Log.Validate(); err != nil {
		return fmt.Errorf("log validation failed: %w", err)
	}

	if _, err := config.FeeTable(); err != nil {
		return fmt.Errorf("fees validation failed: %w", err)
	}

	if config.GenesisFile != "" && !strings.HasSuffix(config.GenesisFile, ".json") {
		return fmt.Errorf("genesis_file must be a .json file, got %s", config.GenesisFile)
	}
	return nil
}
