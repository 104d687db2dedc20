// Package genesis builds the initial ledger: the header, the commission
// account and whatever accounts, assets, pairs and balances the operator
// seeds the ledger with.
package genesis

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/LeJamon/goTokend/internal/core/amount"
	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
	"github.com/LeJamon/goTokend/internal/core/ledger/keylet"
	"github.com/LeJamon/goTokend/internal/core/tx"
)

// ErrAlreadyInitialized is returned by Create when the ledger already has
// a header.
var ErrAlreadyInitialized = errors.New("ledger already initialized")

// Account is an account seeded at genesis.
type Account struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Blocked bool   `json:"blocked,omitempty"`
}

// Asset is an asset seeded at genesis. Nothing of it is issued until a
// balance is funded.
type Asset struct {
	Code         string          `json:"code"`
	Owner        string          `json:"owner"`
	MaxIssuance  decimal.Decimal `json:"max_issuance"`
	Transferable bool            `json:"transferable,omitempty"`
	RequiresKYC  bool            `json:"requires_kyc,omitempty"`
}

// Pair is an open-market asset pair seeded at genesis.
type Pair struct {
	Base     string          `json:"base"`
	Quote    string          `json:"quote"`
	Price    decimal.Decimal `json:"price"`
	Tradable bool            `json:"tradable"`
}

// Balance funds an account with an amount issued from the asset.
type Balance struct {
	Account string          `json:"account"`
	Asset   string          `json:"asset"`
	Amount  decimal.Decimal `json:"amount"`
}

// Config describes the genesis ledger.
type Config struct {
	CloseTime int64     `json:"close_time"`
	Accounts  []Account `json:"accounts"`
	Assets    []Asset   `json:"assets"`
	Pairs     []Pair    `json:"pairs"`
	Balances  []Balance `json:"balances"`
}

// Load reads a genesis file.
func Load(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read genesis file")
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse genesis file %s", path)
	}
	return cfg, nil
}

// Initialized reports whether the ledger behind s has a header.
func Initialized(s *tx.LedgerStore) (bool, error) {
	return s.View().Exists(keylet.Header())
}

// Create writes the genesis ledger into s. The commission account is
// created if cfg does not list it.
func Create(s *tx.LedgerStore, cfg Config, version entry.SaleVersion, commission string) error {
	ok, err := Initialized(s)
	if err != nil {
		return err
	}
	if ok {
		return ErrAlreadyInitialized
	}
	if err := s.StoreHeader(&entry.LedgerHeader{CloseTime: cfg.CloseTime, Version: version}); err != nil {
		return errors.Wrap(err, "store header")
	}

	hasCommission := false
	for _, a := range cfg.Accounts {
		t, err := entry.ParseAccountType(a.Type)
		if err != nil {
			return errors.Wrapf(err, "account %s", a.ID)
		}
		if a.ID == commission {
			hasCommission = true
		}
		if err := s.InsertAccount(&entry.Account{AccountID: a.ID, AccountType: t, Blocked: a.Blocked}); err != nil {
			return errors.Wrapf(err, "account %s", a.ID)
		}
	}
	if !hasCommission && commission != "" {
		if err := s.InsertAccount(&entry.Account{AccountID: commission, AccountType: entry.AccountCommission}); err != nil {
			return errors.Wrap(err, "commission account")
		}
	}

	for _, a := range cfg.Assets {
		max, err := amount.FromDecimal(a.MaxIssuance)
		if err != nil {
			return errors.Wrapf(err, "asset %s", a.Code)
		}
		if err := CreateAsset(s, a.Code, a.Owner, max, policies(a)); err != nil {
			return err
		}
	}
	for _, p := range cfg.Pairs {
		price, err := amount.FromDecimal(p.Price)
		if err != nil {
			return errors.Wrapf(err, "pair %s/%s", p.Base, p.Quote)
		}
		pair := &entry.AssetPair{Base: p.Base, Quote: p.Quote, CurrentPrice: price}
		if p.Tradable {
			pair.Policies |= entry.PairPolicyTradable
		}
		if err := s.InsertAssetPair(pair); err != nil {
			return errors.Wrapf(err, "pair %s/%s", p.Base, p.Quote)
		}
	}
	for _, b := range cfg.Balances {
		amt, err := amount.FromDecimal(b.Amount)
		if err != nil {
			return errors.Wrapf(err, "balance %s/%s", b.Account, b.Asset)
		}
		if err := Fund(s, b.Account, b.Asset, amt); err != nil {
			return err
		}
	}
	return nil
}

func policies(a Asset) uint32 {
	var p uint32
	if a.Transferable {
		p |= entry.AssetPolicyTransferable
	}
	if a.RequiresKYC {
		p |= entry.AssetPolicyRequiresKYC
	}
	return p
}

// CreateAsset inserts an asset with its whole issuance available.
func CreateAsset(s *tx.LedgerStore, code, owner string, maxIssuance int64, policies uint32) error {
	if !entry.ValidAssetCode(code) {
		return errors.Wrapf(entry.ErrInvalidAssetCode, "asset %q", code)
	}
	if maxIssuance < 0 {
		return errors.Wrapf(entry.ErrNegativeAmount, "asset %s", code)
	}
	if _, err := s.LoadAccount(owner); err != nil {
		return errors.Wrapf(err, "asset %s owner", code)
	}
	a := &entry.Asset{
		Code:                 code,
		OwnerID:              owner,
		Policies:             policies,
		MaxIssuanceAmount:    maxIssuance,
		AvailableForIssuance: maxIssuance,
	}
	return errors.Wrapf(s.InsertAsset(a), "asset %s", code)
}

// Fund issues amt of asset and credits it to the account's balance in that
// asset, creating the balance if needed.
func Fund(s *tx.LedgerStore, accountID, asset string, amt int64) error {
	if _, err := s.LoadAccount(accountID); err != nil {
		return errors.Wrapf(err, "fund %s", accountID)
	}
	if err := s.LockIssuance(asset, amt); err != nil {
		return errors.Wrapf(err, "fund %s with %s", accountID, asset)
	}
	if err := s.IssueFromPending(asset, amt); err != nil {
		return errors.Wrapf(err, "fund %s with %s", accountID, asset)
	}
	b, err := s.LoadOrCreateBalance(accountID, asset)
	if err != nil {
		return errors.Wrapf(err, "fund %s with %s", accountID, asset)
	}
	return errors.Wrapf(s.CreditBalance(b.BalanceID, amt), "fund %s with %s", accountID, asset)
}
