package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/LeJamon/goTokend/internal/core/tx"
)

var (
	applyCloseTime     int64
	applyStopOnFailure bool
	applyOutput        string
)

// applyCmd applies a file of requests to the ledger
var applyCmd = &cobra.Command{
	Use:   "apply <file>",
	Short: "Apply requests from a JSON file",
	Long: `Apply the requests of a file to the ledger in order and print one JSON
result per request.

The file holds request objects, either as a JSON array or one object after
another. Every object names its type in the RequestType field:

  {"RequestType": "ManageOffer", "Account": "alice", ...}

Use "-" to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().Int64Var(&applyCloseTime, "close-time", 0, "unix close time of the requests (default now)")
	applyCmd.Flags().BoolVar(&applyStopOnFailure, "stop-on-failure", false, "stop at the first request that is not applied")
	applyCmd.Flags().StringVarP(&applyOutput, "output", "o", "", "write results to file instead of stdout")
}

func runApply(cmd *cobra.Command, args []string) error {
	in := cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	reqs, err := readRequests(in)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if applyOutput != "" {
		f, err := os.Create(applyOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	l, err := openLedger(cfg, log)
	if err != nil {
		return err
	}
	defer l.Close()
	if err := l.requireInitialized(); err != nil {
		return err
	}

	closeTime := applyCloseTime
	if closeTime == 0 {
		closeTime = time.Now().Unix()
	}
	summary, err := applyRequests(l.engine, reqs, closeTime, out, applyStopOnFailure)
	log.Info("requests applied",
		zap.Int("total", len(reqs)),
		zap.Int("applied", summary.Applied),
		zap.Int("failed", summary.Failed))
	return err
}

// requestReport is the printed outcome of one request.
type requestReport struct {
	Index   int     `json:"index"`
	ID      string  `json:"id,omitempty"`
	Type    tx.Type `json:"type,omitempty"`
	Result  string  `json:"result,omitempty"`
	Applied bool    `json:"applied"`
	Message string  `json:"message,omitempty"`
	Output  any     `json:"output,omitempty"`
	Error   string  `json:"error,omitempty"`
}

func newReport(index int, req tx.Request, res tx.ApplyResult, err error) requestReport {
	r := requestReport{
		Index:   index,
		Type:    req.RequestType(),
		Result:  res.Result.String(),
		Applied: res.Applied,
		Message: res.Message,
		Output:  res.Output,
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// applySummary counts the outcomes of an apply run.
type applySummary struct {
	Applied int
	Failed  int
}

// readRequests decodes every request in r. Top-level arrays are flattened.
func readRequests(r io.Reader) ([]tx.Request, error) {
	dec := json.NewDecoder(r)
	var raws []json.RawMessage
	for {
		var raw json.RawMessage
		err := dec.Decode(&raw)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "decode requests")
		}
		if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
			var batch []json.RawMessage
			if err := json.Unmarshal(trimmed, &batch); err != nil {
				return nil, errors.Wrap(err, "decode request array")
			}
			raws = append(raws, batch...)
			continue
		}
		raws = append(raws, raw)
	}

	reqs := make([]tx.Request, 0, len(raws))
	for i, raw := range raws {
		req, err := tx.FromJSON(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "request %d", i)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// applyRequests applies reqs in order at closeTime and writes one report line
// per request to w. It returns early on a broken invariant, and on the first
// unapplied request when stopOnFailure is set.
func applyRequests(engine *tx.Engine, reqs []tx.Request, closeTime int64, w io.Writer, stopOnFailure bool) (applySummary, error) {
	var summary applySummary
	enc := json.NewEncoder(w)
	for i, req := range reqs {
		res, err := engine.Apply(req, closeTime)
		if encErr := enc.Encode(newReport(i, req, res, err)); encErr != nil {
			return summary, encErr
		}
		if err != nil {
			return summary, errors.Wrapf(err, "request %d aborted", i)
		}
		if res.Applied {
			summary.Applied++
			continue
		}
		summary.Failed++
		if stopOnFailure {
			return summary, fmt.Errorf("request %d: %s", i, res.Result)
		}
	}
	return summary, nil
}
