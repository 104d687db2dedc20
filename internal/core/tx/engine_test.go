package tx

import (
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
	"github.com/LeJamon/goTokend/internal/core/ledger/keylet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRequest struct {
	source    string
	preflight Result
	apply     func(ctx *ApplyContext) Result
}

func (r *fakeRequest) RequestType() Type { return "Fake" }
func (r *fakeRequest) Source() string    { return r.source }
func (r *fakeRequest) Preflight() Result { return r.preflight }
func (r *fakeRequest) Apply(ctx *ApplyContext) Result {
	return r.apply(ctx)
}

func newTestEngine(t *testing.T) (*Engine, *memBase) {
	t.Helper()
	base := newMemBase()
	e := NewEngine(base, EngineConfig{CommissionAccount: "commission"}, nil, zaptest.NewLogger(t))
	require.NoError(t, e.Update(func(s *LedgerStore) error {
		if err := s.StoreHeader(&entry.LedgerHeader{}); err != nil {
			return err
		}
		if err := s.InsertAccount(&entry.Account{AccountID: "alice", AccountType: entry.AccountGeneral}); err != nil {
			return err
		}
		if err := s.InsertAccount(&entry.Account{AccountID: "mallory", Blocked: true}); err != nil {
			return err
		}
		return s.InsertBalance(&entry.Balance{BalanceID: "b1", AccountID: "alice", Asset: "USD", Amount: 100})
	}))
	return e, base
}

func balanceOf(t *testing.T, e *Engine, id string) *entry.Balance {
	t.Helper()
	var b *entry.Balance
	require.NoError(t, e.Read(func(s *LedgerStore) error {
		var err error
		b, err = s.LoadBalance(id)
		return err
	}))
	return b
}

func TestEngineCommitsOnlySuccess(t *testing.T) {
	e, _ := newTestEngine(t)

	lockAndReturn := func(res Result) *fakeRequest {
		return &fakeRequest{source: "alice", apply: func(ctx *ApplyContext) Result {
			if err := ctx.Store.LockBalance("b1", 40); err != nil {
				return ctx.Fail(err)
			}
			return res
		}}
	}

	out, err := e.Apply(lockAndReturn(TecSALE_NOT_READY), 10)
	require.NoError(t, err)
	assert.Equal(t, TecSALE_NOT_READY, out.Result)
	assert.False(t, out.Applied)
	assert.Equal(t, int64(0), balanceOf(t, e, "b1").Locked)

	out, err = e.Apply(lockAndReturn(TesSUCCESS), 10)
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.NotEmpty(t, out.Affected)
	assert.Equal(t, int64(40), balanceOf(t, e, "b1").Locked)

	require.NoError(t, e.Read(func(s *LedgerStore) error {
		h, err := s.Header()
		require.NoError(t, err)
		assert.Equal(t, uint64(1), h.Sequence)
		assert.Equal(t, int64(10), h.CloseTime)
		return nil
	}))
}

func TestEnginePreflightAndSource(t *testing.T) {
	e, _ := newTestEngine(t)
	called := false
	req := &fakeRequest{source: "alice", preflight: TemBAD_AMOUNT, apply: func(*ApplyContext) Result {
		called = true
		return TesSUCCESS
	}}

	out, err := e.Apply(req, 1)
	require.NoError(t, err)
	assert.Equal(t, TemBAD_AMOUNT, out.Result)
	assert.False(t, called)

	req.preflight = TesSUCCESS
	req.source = "nobody"
	out, err = e.Apply(req, 1)
	require.NoError(t, err)
	assert.Equal(t, TecACCOUNT_NOT_FOUND, out.Result)

	req.source = "mallory"
	out, err = e.Apply(req, 1)
	require.NoError(t, err)
	assert.Equal(t, TecACCOUNT_BLOCKED, out.Result)
	assert.False(t, called)
}

func TestEngineAbortsOnFatal(t *testing.T) {
	e, base := newTestEngine(t)
	before := len(base.data)

	req := &fakeRequest{source: "alice", apply: func(ctx *ApplyContext) Result {
		if err := ctx.Store.CreditBalance("b1", 5); err != nil {
			return ctx.Fail(err)
		}
		// unlocking more than was locked breaks lock pairing
		return ctx.Fail(ctx.Store.UnlockBalance("b1", 1))
	}}

	out, err := e.Apply(req, 1)
	require.Error(t, err)
	var fe *FatalError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, TefINVARIANT, out.Result)
	assert.Equal(t, int64(100), balanceOf(t, e, "b1").Amount)
	assert.Len(t, base.data, before)
}

func TestEngineAbortEvenIfHandlerReportsSuccess(t *testing.T) {
	e, _ := newTestEngine(t)
	req := &fakeRequest{apply: func(ctx *ApplyContext) Result {
		_ = ctx.Fail(Fatalf("test", "ignored"))
		return TesSUCCESS
	}}
	out, err := e.Apply(req, 1)
	require.Error(t, err)
	assert.Equal(t, TefINTERNAL, out.Result)
}

func TestStoreBalanceIndex(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.Update(func(s *LedgerStore) error {
		b, err := s.LoadBalanceFor("alice", "USD")
		require.NoError(t, err)
		require.NotNil(t, b)
		assert.Equal(t, "b1", b.BalanceID)

		created, err := s.LoadOrCreateBalance("commission", "USD")
		require.NoError(t, err)
		assert.Equal(t, "bal00000001", created.BalanceID)

		again, err := s.LoadOrCreateBalance("commission", "USD")
		require.NoError(t, err)
		assert.Equal(t, created.BalanceID, again.BalanceID)

		missing, err := s.LoadBalanceFor("alice", "EUR")
		require.NoError(t, err)
		assert.Nil(t, missing)
		return nil
	}))
}

func TestStoreLockJournal(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.Read(func(s *LedgerStore) error {
		require.NoError(t, s.LockBalance("b1", 30))
		require.NoError(t, s.ChargeLocked("b1", 10))
		assert.Equal(t, int64(20), s.Locks().Net("b1"))
		require.NoError(t, s.UnlockBalance("b1", 20))
		assert.Equal(t, int64(0), s.Locks().Net("b1"))
		assert.Empty(t, s.Locks().Balances())

		require.ErrorIs(t, s.LockBalance("b1", 1000), entry.ErrUnderfunded)
		require.ErrorIs(t, s.LockBalance("nope", 1), ErrBalanceNotFound)
		return nil
	}))
}

func TestStoreOfferBook(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.Read(func(s *LedgerStore) error {
		mk := func(id uint64, price int64) *entry.Offer {
			return &entry.Offer{OfferID: id, OrderBookID: 0, BaseAsset: "TKN", QuoteAsset: "USD", BaseAmount: 1, QuoteAmount: 1, Price: price}
		}
		for _, o := range []*entry.Offer{mk(1, 300), mk(2, 100), mk(3, 200), mk(4, 100)} {
			require.NoError(t, s.InsertOffer(o))
		}

		offers, err := s.LoadOffersBestPrice(0, "TKN", "USD", false, 0, 0)
		require.NoError(t, err)
		var ids []uint64
		for _, o := range offers {
			ids = append(ids, o.OfferID)
		}
		assert.Equal(t, []uint64{2, 4, 3, 1}, ids)

		page, err := s.LoadOffersBestPrice(0, "TKN", "USD", false, 2, 1)
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, uint64(4), page[0].OfferID)
		assert.Equal(t, uint64(3), page[1].OfferID)

		best, err := s.BestOffer(0, "TKN", "USD", false)
		require.NoError(t, err)
		require.NoError(t, s.DeleteOffer(best))
		best, err = s.BestOffer(0, "TKN", "USD", false)
		require.NoError(t, err)
		assert.Equal(t, uint64(4), best.OfferID)

		none, err := s.BestOffer(0, "TKN", "USD", true)
		require.NoError(t, err)
		assert.Nil(t, none)

		_, err = s.LoadOffer(5, 4)
		require.ErrorIs(t, err, ErrOfferNotFound)

		exists, err := s.View().Exists(keylet.Offer(2))
		require.NoError(t, err)
		assert.False(t, exists)
		return nil
	}))
}
