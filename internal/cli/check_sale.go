package cli

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/LeJamon/goTokend/internal/core/tx/sale"
)

// checkSaleCmd evaluates one sale
var checkSaleCmd = &cobra.Command{
	Use:   "check-sale <id>",
	Short: "Evaluate a sale now",
	Long: `Run CheckSaleState for a sale at the current time: cancel it if it ended
below its soft cap, close it if it is complete, or record its progress.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheckSale,
}

func init() {
	rootCmd.AddCommand(checkSaleCmd)
}

func runCheckSale(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return errors.Wrapf(err, "invalid sale id %q", args[0])
	}

	l, err := openLedger(cfg, log)
	if err != nil {
		return err
	}
	defer l.Close()
	if err := l.requireInitialized(); err != nil {
		return err
	}

	req := sale.NewCheckSaleState(id)
	res, err := l.engine.Apply(req, time.Now().Unix())
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(newReport(0, req, res, err)); encErr != nil {
		return encErr
	}
	return err
}
