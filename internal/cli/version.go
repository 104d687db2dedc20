package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
	"github.com/LeJamon/goTokend/internal/core/tx"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display version information for tokend including the supported sale version and request types.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "tokend version %s\n", rootCmd.Version)
		fmt.Fprintf(out, "Sale version: %s\n", entry.LatestSaleVersion)
		fmt.Fprintf(out, "Request types: %v\n", tx.RegisteredTypes())
		fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
		fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
