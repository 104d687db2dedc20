package cli

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/LeJamon/goTokend/internal/config"
	"github.com/LeJamon/goTokend/internal/core/ledger/genesis"
	"github.com/LeJamon/goTokend/internal/core/tx"
	"github.com/LeJamon/goTokend/internal/storage/kvstore"

	// request handlers register themselves with tx
	_ "github.com/LeJamon/goTokend/internal/core/tx/offer"
	_ "github.com/LeJamon/goTokend/internal/core/tx/sale"
)

// ErrNotInitialized is returned when the ledger has no genesis state.
var ErrNotInitialized = errors.New("ledger not initialized, run tokend init")

// ledger is an open ledger database and the engine applying to it.
type ledger struct {
	store  *kvstore.Store
	engine *tx.Engine
}

// openLedger opens the configured database and builds the request engine
// around it.
func openLedger(c *config.Config, log *zap.Logger) (*ledger, error) {
	fees, err := c.FeeTable()
	if err != nil {
		return nil, err
	}
	store, err := kvstore.Open(c.Database, log)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", c.Database.Backend)
	}
	engine := tx.NewEngine(store, tx.EngineConfig{
		CommissionAccount: c.Ledger.CommissionAccount,
		SaleVersion:       c.Ledger.SaleVersion(),
	}, fees, log)
	return &ledger{store: store, engine: engine}, nil
}

// requireInitialized fails unless genesis state has been written.
func (l *ledger) requireInitialized() error {
	var ok bool
	err := l.engine.Read(func(s *tx.LedgerStore) (err error) {
		ok, err = genesis.Initialized(s)
		return err
	})
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotInitialized
	}
	return nil
}

// initialize writes the genesis ledger described by gc.
func (l *ledger) initialize(c *config.Config, gc genesis.Config) error {
	return l.engine.Update(func(s *tx.LedgerStore) error {
		return genesis.Create(s, gc, c.Ledger.SaleVersion(), c.Ledger.CommissionAccount)
	})
}

func (l *ledger) Close() error {
	return l.store.Close()
}
