package tx

import (
	"sync"

	"go.uber.org/zap"

	"github.com/LeJamon/goTokend/internal/core/fee"
	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
)

// EngineConfig holds configuration for the request engine
type EngineConfig struct {
	// CommissionAccount receives every fee
	CommissionAccount string

	// SaleVersion is the version new and updated sales are migrated to
	SaleVersion entry.SaleVersion
}

// ApplyResult contains the result of applying a request
type ApplyResult struct {
	// Result is the request result code
	Result Result

	// Applied indicates if the request changed the ledger
	Applied bool

	// Message is a human-readable result message
	Message string

	// Output is the request specific response
	Output any

	// Affected lists the ledger entries the request changed
	Affected []AffectedEntry
}

// Engine applies requests to the ledger one at a time. Every request runs
// against its own ApplyStateTable; only tesSUCCESS commits it to the base.
type Engine struct {
	mu     sync.Mutex
	base   Base
	config EngineConfig
	fees   fee.Lookup
	log    *zap.Logger
}

// NewEngine creates a new request engine
func NewEngine(base Base, config EngineConfig, fees fee.Lookup, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		base:   base,
		config: config,
		fees:   fees,
		log:    log,
	}
}

// Config returns the engine configuration.
func (e *Engine) Config() EngineConfig {
	return e.config
}

// Apply processes a request at closeTime. The returned error is non-nil only
// when the request was aborted by a broken invariant or a storage failure;
// the ledger is left as it was before the request in that case.
func (e *Engine) Apply(req Request, closeTime int64) (ApplyResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	log := e.log.With(zap.String("request", string(req.RequestType())))

	// Step 1: Preflight checks (syntax validation)
	if res := req.Preflight(); !res.IsSuccess() {
		log.Debug("request rejected in preflight", zap.Stringer("result", res))
		return ApplyResult{Result: res, Message: res.Message()}, nil
	}

	table := NewApplyStateTable(e.base)
	ctx := &ApplyContext{
		Store:     NewLedgerStore(table),
		Config:    e.config,
		Fees:      e.fees,
		Log:       log,
		CloseTime: closeTime,
	}

	// Step 2: Source account checks
	res := e.checkSource(ctx, req.Source())

	// Step 3: Apply the request
	if res.IsSuccess() {
		res = req.Apply(ctx)
	}
	if res.IsSuccess() && ctx.Err() == nil {
		res = ctx.Fail(e.advanceHeader(ctx.Store, closeTime))
	}

	if err := ctx.Err(); err != nil {
		if res.IsSuccess() {
			res = TefINTERNAL
		}
		log.Error("unexpected state, request aborted", zap.Stringer("result", res), zap.Error(err))
		return ApplyResult{Result: res, Message: res.Message()}, err
	}
	if !res.IsSuccess() {
		log.Debug("request rejected", zap.Stringer("result", res))
		return ApplyResult{Result: res, Message: res.Message(), Output: ctx.Output}, nil
	}

	// Step 4: Commit
	affected := table.Affected()
	if err := table.Apply(e.base); err != nil {
		log.Error("commit failed", zap.Error(err))
		return ApplyResult{Result: TefINTERNAL, Message: TefINTERNAL.Message()}, err
	}

	log.Debug("request applied", zap.Int("affected", len(affected)))
	return ApplyResult{
		Result:   res,
		Applied:  true,
		Message:  res.Message(),
		Output:   ctx.Output,
		Affected: affected,
	}, nil
}

func (e *Engine) checkSource(ctx *ApplyContext, source string) Result {
	if source == "" {
		return TesSUCCESS
	}
	acc, err := ctx.Store.LoadAccount(source)
	if err != nil {
		return ctx.Fail(err)
	}
	if acc.Blocked {
		return TecACCOUNT_BLOCKED
	}
	return TesSUCCESS
}

func (e *Engine) advanceHeader(s *LedgerStore, closeTime int64) error {
	h, err := s.Header()
	if err != nil {
		return err
	}
	h.Sequence++
	if closeTime > h.CloseTime {
		h.CloseTime = closeTime
	}
	return s.StoreHeader(h)
}

// Read runs fn against a read-only snapshot of the ledger. Writes made by
// fn are discarded.
func (e *Engine) Read(fn func(s *LedgerStore) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(NewLedgerStore(NewApplyStateTable(e.base)))
}

// Update runs fn against the ledger and commits its writes if it returns
// nil. It bypasses request validation and is meant for seeding state.
func (e *Engine) Update(fn func(s *LedgerStore) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	table := NewApplyStateTable(e.base)
	if err := fn(NewLedgerStore(table)); err != nil {
		return err
	}
	return table.Apply(e.base)
}
