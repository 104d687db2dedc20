package testing

import (
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/LeJamon/goTokend/internal/core/fee"
	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
	"github.com/LeJamon/goTokend/internal/core/ledger/genesis"
	"github.com/LeJamon/goTokend/internal/core/ledger/keylet"
	"github.com/LeJamon/goTokend/internal/core/tx"
	"github.com/LeJamon/goTokend/internal/storage/kvstore"

	// request handlers register themselves with tx
	_ "github.com/LeJamon/goTokend/internal/core/tx/offer"
	_ "github.com/LeJamon/goTokend/internal/core/tx/sale"
)

// CommissionAccount is the account every test ledger sends fees to.
const CommissionAccount = "commission"

// EnvOption configures a TestEnv.
type EnvOption func(*envConfig)

type envConfig struct {
	fees        fee.Lookup
	saleVersion entry.SaleVersion
	storage     kvstore.Config
}

// WithFees makes the ledger charge the fees of rules.
func WithFees(rules ...fee.Rule) EnvOption {
	return func(c *envConfig) {
		t, err := fee.NewTable(rules)
		if err != nil {
			panic(err)
		}
		c.fees = t
	}
}

// WithFeeLookup makes the ledger resolve fees through l.
func WithFeeLookup(l fee.Lookup) EnvOption {
	return func(c *envConfig) { c.fees = l }
}

// WithSaleVersion sets the version sales are stored at.
func WithSaleVersion(v entry.SaleVersion) EnvOption {
	return func(c *envConfig) { c.saleVersion = v }
}

// WithStorage backs the ledger with the given storage instead of memory.
func WithStorage(cfg kvstore.Config) EnvOption {
	return func(c *envConfig) { c.storage = cfg }
}

// TestEnv manages a test ledger for request testing. It provides a small
// API for seeding accounts, assets and balances, submitting requests and
// inspecting the resulting state.
type TestEnv struct {
	t      *testing.T
	store  *kvstore.Store
	engine *tx.Engine
	clock  *ManualClock
}

// NewTestEnv creates a test environment with an empty genesis ledger holding
// only the commission account.
func NewTestEnv(t *testing.T, opts ...EnvOption) *TestEnv {
	t.Helper()

	cfg := envConfig{
		saleVersion: entry.LatestSaleVersion,
		storage:     kvstore.MemoryConfig(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	log := zaptest.NewLogger(t)
	store, err := kvstore.Open(cfg.storage, log)
	if err != nil {
		t.Fatalf("Failed to open ledger storage: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	clock := NewManualClock()
	engine := tx.NewEngine(store, tx.EngineConfig{
		CommissionAccount: CommissionAccount,
		SaleVersion:       cfg.saleVersion,
	}, cfg.fees, log)

	env := &TestEnv{t: t, store: store, engine: engine, clock: clock}
	env.update(func(s *tx.LedgerStore) error {
		return genesis.Create(s, genesis.Config{CloseTime: clock.Unix()}, cfg.saleVersion, CommissionAccount)
	})
	return env
}

func (e *TestEnv) update(fn func(s *tx.LedgerStore) error) {
	e.t.Helper()
	if err := e.engine.Update(fn); err != nil {
		e.t.Fatalf("Failed to update ledger: %v", err)
	}
}

func (e *TestEnv) read(fn func(s *tx.LedgerStore) error) {
	e.t.Helper()
	if err := e.engine.Read(fn); err != nil {
		e.t.Fatalf("Failed to read ledger: %v", err)
	}
}

// Engine returns the request engine.
func (e *TestEnv) Engine() *tx.Engine {
	return e.engine
}

// Storage returns the storage the ledger is committed to.
func (e *TestEnv) Storage() *kvstore.Store {
	return e.store
}

// CreateAccount adds an account of the given type.
func (e *TestEnv) CreateAccount(id string, accountType entry.AccountType) string {
	e.t.Helper()
	e.update(func(s *tx.LedgerStore) error {
		return s.InsertAccount(&entry.Account{AccountID: id, AccountType: accountType})
	})
	return id
}

// CreateAccounts adds verified general accounts.
func (e *TestEnv) CreateAccounts(ids ...string) {
	e.t.Helper()
	for _, id := range ids {
		e.CreateAccount(id, entry.AccountGeneral)
	}
}

// BlockAccount marks an account as blocked.
func (e *TestEnv) BlockAccount(id string) {
	e.t.Helper()
	e.update(func(s *tx.LedgerStore) error {
		acc, err := s.LoadAccount(id)
		if err != nil {
			return err
		}
		acc.Blocked = true
		data, err := entry.EncodeAccount(acc)
		if err != nil {
			return err
		}
		return s.View().Update(keylet.Account(id), data)
	})
}

// CreateAsset adds an asset owned by owner with its whole issuance available.
func (e *TestEnv) CreateAsset(code, owner string, maxIssuance int64, policies uint32) {
	e.t.Helper()
	e.update(func(s *tx.LedgerStore) error {
		return genesis.CreateAsset(s, code, owner, maxIssuance, policies)
	})
}

// CreateAssetPair adds an open-market pair.
func (e *TestEnv) CreateAssetPair(base, quote string, price int64, tradable bool) {
	e.t.Helper()
	pair := &entry.AssetPair{Base: base, Quote: quote, CurrentPrice: price}
	if tradable {
		pair.Policies |= entry.PairPolicyTradable
	}
	e.update(func(s *tx.LedgerStore) error { return s.InsertAssetPair(pair) })
}

// Fund issues amt of asset to account and returns the account's balance id
// in that asset.
func (e *TestEnv) Fund(account, asset string, amt int64) string {
	e.t.Helper()
	e.update(func(s *tx.LedgerStore) error { return genesis.Fund(s, account, asset, amt) })
	return e.BalanceID(account, asset)
}

// BalanceID returns the id of the account's balance in asset, creating an
// empty balance if the account has none.
func (e *TestEnv) BalanceID(account, asset string) string {
	e.t.Helper()
	var id string
	e.update(func(s *tx.LedgerStore) error {
		b, err := s.LoadOrCreateBalance(account, asset)
		if err != nil {
			return err
		}
		id = b.BalanceID
		return nil
	})
	return id
}

// ExtraBalance creates another balance of account in asset, outside the
// account's balance index, and returns its id. The ledger itself never
// holds two balances of one asset for an account.
func (e *TestEnv) ExtraBalance(account, asset string) string {
	e.t.Helper()
	var id string
	e.update(func(s *tx.LedgerStore) error {
		n, err := s.NextID(entry.IDBalance)
		if err != nil {
			return err
		}
		id = fmt.Sprintf("bal%08d", n)
		data, err := entry.EncodeBalance(&entry.Balance{BalanceID: id, AccountID: account, Asset: asset})
		if err != nil {
			return err
		}
		return s.View().Insert(keylet.Balance(id), data)
	})
	return id
}

// Balance returns the account's balance in asset. A missing balance is
// returned as an empty one.
func (e *TestEnv) Balance(account, asset string) entry.Balance {
	e.t.Helper()
	var out entry.Balance
	e.read(func(s *tx.LedgerStore) error {
		b, err := s.LoadBalanceFor(account, asset)
		if err != nil || b == nil {
			return err
		}
		out = *b
		return nil
	})
	return out
}

// CommissionBalance returns what the commission account holds in asset.
func (e *TestEnv) CommissionBalance(asset string) int64 {
	e.t.Helper()
	return e.Balance(CommissionAccount, asset).Amount
}

// Balances returns every balance held in asset.
func (e *TestEnv) Balances(asset string) []entry.Balance {
	e.t.Helper()
	var out []entry.Balance
	e.read(func(s *tx.LedgerStore) error {
		var decodeErr error
		err := s.View().ForEach(keylet.Type(entry.TypeBalance), func(_, data []byte) bool {
			b, err := entry.DecodeBalance(data)
			if err != nil {
				decodeErr = err
				return false
			}
			if b.Asset == asset {
				out = append(out, *b)
			}
			return true
		})
		if err != nil {
			return err
		}
		return decodeErr
	})
	return out
}

// Asset returns the asset.
func (e *TestEnv) Asset(code string) entry.Asset {
	e.t.Helper()
	var out entry.Asset
	e.read(func(s *tx.LedgerStore) error {
		a, err := s.LoadAsset(code)
		if err != nil {
			return err
		}
		out = *a
		return nil
	})
	return out
}

// Sale returns the sale, or nil if it does not exist.
func (e *TestEnv) Sale(saleID uint64) *entry.Sale {
	e.t.Helper()
	var out *entry.Sale
	e.read(func(s *tx.LedgerStore) error {
		ok, err := s.View().Exists(keylet.Sale(saleID))
		if err != nil || !ok {
			return err
		}
		out, err = s.LoadSale(saleID)
		return err
	})
	return out
}

// SaleIDs returns the ids of every open sale.
func (e *TestEnv) SaleIDs() []uint64 {
	e.t.Helper()
	var ids []uint64
	e.read(func(s *tx.LedgerStore) (err error) {
		ids, err = s.SaleIDs()
		return err
	})
	return ids
}

// Offers returns one side of a book, best first.
func (e *TestEnv) Offers(orderBookID uint64, base, quote string, isBuy bool) []*entry.Offer {
	e.t.Helper()
	var out []*entry.Offer
	e.read(func(s *tx.LedgerStore) (err error) {
		out, err = s.LoadOffersBestPrice(orderBookID, base, quote, isBuy, 0, 0)
		return err
	})
	return out
}

// Offer returns an offer, or nil if it does not exist.
func (e *TestEnv) Offer(orderBookID, offerID uint64) *entry.Offer {
	e.t.Helper()
	var out *entry.Offer
	e.read(func(s *tx.LedgerStore) error {
		ok, err := s.View().Exists(keylet.Offer(offerID))
		if err != nil || !ok {
			return err
		}
		out, err = s.LoadOffer(orderBookID, offerID)
		return err
	})
	return out
}

// Header returns the ledger header.
func (e *TestEnv) Header() entry.LedgerHeader {
	e.t.Helper()
	var out entry.LedgerHeader
	e.read(func(s *tx.LedgerStore) error {
		h, err := s.Header()
		if err != nil {
			return err
		}
		out = *h
		return nil
	})
	return out
}

// Submit applies req at the current test time.
func (e *TestEnv) Submit(req tx.Request) TxResult {
	e.t.Helper()
	res, err := e.engine.Apply(req, e.clock.Unix())
	return TxResult{
		Code:     res.Result.String(),
		Result:   res.Result,
		Success:  res.Result.IsSuccess() && res.Applied,
		Message:  res.Message,
		Output:   res.Output,
		Affected: len(res.Affected),
		Err:      err,
	}
}

// Now returns the current test time.
func (e *TestEnv) Now() time.Time {
	return e.clock.Now()
}

// AdvanceTime moves the test clock forward.
func (e *TestEnv) AdvanceTime(d time.Duration) {
	e.clock.Advance(d)
}

// SetTime sets the test clock.
func (e *TestEnv) SetTime(t time.Time) {
	e.clock.Set(t)
}
