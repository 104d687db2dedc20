// Package node runs the request engine: a single apply loop fed by
// submitters and a periodic sweep that evaluates every open sale.
package node

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/LeJamon/goTokend/internal/core/tx"
	"github.com/LeJamon/goTokend/internal/core/tx/sale"
)

// ErrStopped is returned by Submit once the node no longer runs.
var ErrStopped = errors.New("node stopped")

// Config tunes the node loops.
type Config struct {
	// SaleCheckInterval is the period of the sale sweep, 0 disables it
	SaleCheckInterval time.Duration

	// QueueSize bounds the requests waiting for the apply loop
	QueueSize int
}

// Option configures a Node.
type Option func(*Node)

// WithClock sets the source of request close times.
func WithClock(now func() time.Time) Option {
	return func(n *Node) { n.now = now }
}

// Outcome is the result of a submitted request.
type Outcome struct {
	tx.ApplyResult

	// ID identifies the submission in the node logs
	ID  uuid.UUID
	Err error
}

type submission struct {
	id   uuid.UUID
	req  tx.Request
	done chan Outcome
}

// Node serializes every request through one goroutine.
type Node struct {
	engine   *tx.Engine
	interval time.Duration
	log      *zap.Logger
	now      func() time.Time

	queue   chan submission
	stopped chan struct{}
}

// New creates a node around engine. Call Run to start it.
func New(engine *tx.Engine, cfg Config, log *zap.Logger, opts ...Option) *Node {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	n := &Node{
		engine:   engine,
		interval: cfg.SaleCheckInterval,
		log:      log.Named("node"),
		now:      time.Now,
		queue:    make(chan submission, cfg.QueueSize),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Run starts the apply loop and the sale sweep and blocks until ctx is
// canceled or a request aborts with a broken invariant.
func (n *Node) Run(ctx context.Context) error {
	defer close(n.stopped)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return n.applyLoop(gCtx) })
	if n.interval > 0 {
		g.Go(func() error { return n.sweepLoop(gCtx) })
	}

	n.log.Info("node started", zap.Duration("sale_check_interval", n.interval))
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	n.log.Info("node stopped", zap.Error(err))
	return err
}

// Submit queues req and waits for its outcome.
func (n *Node) Submit(ctx context.Context, req tx.Request) (Outcome, error) {
	select {
	case <-n.stopped:
		return Outcome{}, ErrStopped
	default:
	}

	done := make(chan Outcome, 1)
	select {
	case n.queue <- submission{id: uuid.New(), req: req, done: done}:
	case <-n.stopped:
		return Outcome{}, ErrStopped
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
	select {
	case out := <-done:
		return out, nil
	case <-n.stopped:
		return Outcome{}, ErrStopped
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

func (n *Node) applyLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s := <-n.queue:
			out := n.apply(s)
			s.done <- out
			if out.Err != nil {
				return errors.Wrapf(out.Err, "apply %s", s.req.RequestType())
			}
		}
	}
}

// apply runs one request at the current time.
func (n *Node) apply(s submission) Outcome {
	res, err := n.engine.Apply(s.req, n.now().Unix())
	n.log.Debug("request applied",
		zap.Stringer("id", s.id),
		zap.String("type", string(s.req.RequestType())),
		zap.Stringer("result", res.Result),
		zap.Bool("applied", res.Applied))
	return Outcome{ApplyResult: res, ID: s.id, Err: err}
}

func (n *Node) sweepLoop(ctx context.Context) error {
	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := n.SweepSales(ctx); err != nil {
				return err
			}
		}
	}
}

// SweepReport counts what a sweep did.
type SweepReport struct {
	Checked  int
	Canceled int
	Closed   int
	Updated  int
}

// SweepSales submits CheckSaleState for every open sale. Sales that are not
// due for a transition are skipped quietly.
func (n *Node) SweepSales(ctx context.Context) (SweepReport, error) {
	var report SweepReport
	var ids []uint64
	err := n.engine.Read(func(s *tx.LedgerStore) error {
		var err error
		ids, err = s.SaleIDs()
		return err
	})
	if err != nil {
		return report, errors.Wrap(err, "list sales")
	}

	for _, id := range ids {
		out, err := n.Submit(ctx, sale.NewCheckSaleState(id))
		if err != nil {
			return report, err
		}
		if out.Err != nil {
			return report, errors.Wrapf(out.Err, "check sale %d", id)
		}
		report.Checked++
		switch {
		case out.Result == tx.TecSALE_NOT_READY, out.Result == tx.TecSALE_NOT_FOUND:
			continue
		case !out.Result.IsSuccess():
			n.log.Warn("sale check failed", zap.Uint64("sale", id), zap.Stringer("result", out.Result))
			continue
		}
		res, ok := out.Output.(*sale.CheckSaleStateResult)
		if !ok {
			continue
		}
		switch res.Effect {
		case sale.EffectCanceled:
			report.Canceled++
		case sale.EffectClosed:
			report.Closed++
		case sale.EffectUpdated:
			report.Updated++
		}
	}

	if report.Canceled+report.Closed+report.Updated > 0 {
		n.log.Info("sales swept",
			zap.Int("checked", report.Checked),
			zap.Int("canceled", report.Canceled),
			zap.Int("closed", report.Closed),
			zap.Int("updated", report.Updated))
	}
	return report, nil
}
