package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/LeJamon/goTokend/internal/core/tx"
	"github.com/LeJamon/goTokend/internal/node"
)

var runQueueSize int

// runCmd runs the node
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the node",
	Long: `Run the node: read requests from stdin, one JSON object per line, apply
them in arrival order and print one JSON result per line. Open sales are
evaluated every sale_check_interval.

The node keeps sweeping sales after stdin is closed and stops on SIGINT or
SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runNode,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().IntVar(&runQueueSize, "queue-size", 64, "requests waiting for the apply loop")
}

func runNode(cmd *cobra.Command, args []string) error {
	l, err := openLedger(cfg, log)
	if err != nil {
		return err
	}
	defer l.Close()
	if err := l.requireInitialized(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n := node.New(l.engine, node.Config{
		SaleCheckInterval: cfg.Ledger.SaleCheckInterval,
		QueueSize:         runQueueSize,
	}, log)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return n.Run(gCtx) })
	g.Go(func() error {
		return feedRequests(gCtx, n, cmd.InOrStdin(), cmd.OutOrStdout(), log)
	})
	return g.Wait()
}

// feedRequests submits every line of in to n and writes the reports to out.
// Lines that do not decode are reported and skipped.
func feedRequests(ctx context.Context, n *node.Node, in io.Reader, out io.Writer, log *zap.Logger) error {
	lines := make(chan []byte)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			line := append([]byte(nil), sc.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			log.Error("read requests", zap.Error(err))
		}
	}()

	enc := json.NewEncoder(out)
	for index := 0; ; {
		var line []byte
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				log.Info("request stream closed")
				return nil
			}
			line = l
		}
		if len(line) == 0 {
			continue
		}

		req, err := tx.FromJSON(line)
		if err != nil {
			if err := enc.Encode(requestReport{Index: index, Error: err.Error()}); err != nil {
				return err
			}
			index++
			continue
		}
		o, err := n.Submit(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		report := newReport(index, req, o.ApplyResult, o.Err)
		report.ID = o.ID.String()
		if err := enc.Encode(report); err != nil {
			return err
		}
		index++
	}
}
