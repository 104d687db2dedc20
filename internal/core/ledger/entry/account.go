package entry

import "fmt"

// AccountType is the role an account holds on the platform.
type AccountType int32

const (
	AccountNotVerified AccountType = iota
	AccountGeneral
	AccountSyndicate
	AccountMaster
	AccountCommission
)

var accountTypeNames = map[AccountType]string{
	AccountNotVerified: "not_verified",
	AccountGeneral:     "general",
	AccountSyndicate:   "syndicate",
	AccountMaster:      "master",
	AccountCommission:  "commission",
}

func (t AccountType) String() string {
	if name, ok := accountTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("account_type(%d)", int32(t))
}

// ParseAccountType returns the account type for its configuration name.
func ParseAccountType(name string) (AccountType, error) {
	for t, n := range accountTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown account type %q", name)
}

// Account is an account root entry.
type Account struct {
	AccountID   string      `codec:"id"`
	AccountType AccountType `codec:"type"`
	Blocked     bool        `codec:"blocked,omitempty"`
}

// IsVerified reports whether the account passed KYC.
func (a *Account) IsVerified() bool {
	return a.AccountType != AccountNotVerified
}
