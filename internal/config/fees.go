package config

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/LeJamon/goTokend/internal/core/amount"
	"github.com/LeJamon/goTokend/internal/core/fee"
	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
)

// FeeRuleConfig represents one [[fees]] entry. Amounts are decimal strings
// in asset units; Percent is a percentage, "1.5" meaning 1.5%.
type FeeRuleConfig struct {
	Type        string `toml:"type" mapstructure:"type"`
	Asset       string `toml:"asset" mapstructure:"asset"`
	Account     string `toml:"account" mapstructure:"account"`
	AccountType string `toml:"account_type" mapstructure:"account_type"`
	Subtype     int64  `toml:"subtype" mapstructure:"subtype"`
	LowerBound  string `toml:"lower_bound" mapstructure:"lower_bound"`
	UpperBound  string `toml:"upper_bound" mapstructure:"upper_bound"`
	Fixed       string `toml:"fixed" mapstructure:"fixed"`
	Percent     string `toml:"percent" mapstructure:"percent"`
}

var hundred = decimal.NewFromInt(100)

// Rule converts the entry into a fee rule.
func (r *FeeRuleConfig) Rule() (fee.Rule, error) {
	t, err := fee.ParseType(r.Type)
	if err != nil {
		return fee.Rule{}, err
	}
	rule := fee.Rule{
		Type:      t,
		Asset:     r.Asset,
		AccountID: r.Account,
		Subtype:   r.Subtype,
	}
	if r.AccountType != "" {
		at, err := entry.ParseAccountType(r.AccountType)
		if err != nil {
			return fee.Rule{}, err
		}
		rule.AccountType = &at
	}
	if rule.LowerBound, err = optionalAmount("lower_bound", r.LowerBound); err != nil {
		return fee.Rule{}, err
	}
	if rule.UpperBound, err = optionalAmount("upper_bound", r.UpperBound); err != nil {
		return fee.Rule{}, err
	}
	if rule.Fee.Fixed, err = optionalAmount("fixed", r.Fixed); err != nil {
		return fee.Rule{}, err
	}
	if r.Percent != "" {
		d, err := decimal.NewFromString(r.Percent)
		if err != nil {
			return fee.Rule{}, fmt.Errorf("percent: %w", err)
		}
		if rule.Fee.Percent, err = amount.FromDecimal(d.Div(hundred)); err != nil {
			return fee.Rule{}, fmt.Errorf("percent: %w", err)
		}
	}
	return rule, nil
}

func optionalAmount(name, s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := amount.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

// FeeTable builds the fee lookup from the [[fees]] entries.
func (c *Config) FeeTable() (*fee.Table, error) {
	rules := make([]fee.Rule, 0, len(c.Fees))
	for i := range c.Fees {
		r, err := c.Fees[i].Rule()
		if err != nil {
			return nil, fmt.Errorf("fee %d: %w", i, err)
		}
		rules = append(rules, r)
	}
	return fee.NewTable(rules)
}
