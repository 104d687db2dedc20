package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/LeJamon/goTokend/internal/core/ledger/genesis"
)

var initEmpty bool

// initCmd writes the genesis ledger
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the genesis ledger",
	Long: `Create the ledger database and seed it with the accounts, assets, asset
pairs and balances of the genesis file named by genesis_file.

With --empty, or when the genesis file does not exist, the ledger starts with
the commission account only.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initEmpty, "empty", false, "ignore the genesis file")
}

func runInit(cmd *cobra.Command, args []string) error {
	gc, err := loadGenesis(cfg.GenesisFile, initEmpty, log)
	if err != nil {
		return err
	}
	if gc.CloseTime == 0 {
		gc.CloseTime = time.Now().Unix()
	}

	l, err := openLedger(cfg, log)
	if err != nil {
		return err
	}
	defer l.Close()
	if err := l.initialize(cfg, gc); err != nil {
		return err
	}

	log.Info("ledger initialized",
		zap.String("backend", cfg.Database.Backend),
		zap.String("path", cfg.Database.Path),
		zap.Int("accounts", len(gc.Accounts)),
		zap.Int("assets", len(gc.Assets)),
		zap.Int("pairs", len(gc.Pairs)),
		zap.Int("balances", len(gc.Balances)))
	fmt.Fprintln(cmd.OutOrStdout(), "ledger initialized")
	return nil
}

// loadGenesis reads path, or returns an empty genesis when skip is set or
// the file is missing.
func loadGenesis(path string, skip bool, log *zap.Logger) (genesis.Config, error) {
	if skip || path == "" {
		return genesis.Config{}, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Warn("genesis file not found, starting empty", zap.String("path", path))
		return genesis.Config{}, nil
	}
	return genesis.Load(path)
}
