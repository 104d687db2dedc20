package testing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goTokend/internal/core/tx"
)

// RequireTxSuccess asserts that a request was applied.
func RequireTxSuccess(t *testing.T, result TxResult) {
	t.Helper()
	require.NoError(t, result.Err, "Unexpected state while applying request")
	require.True(t, result.Success,
		"Expected request success, got %s: %s", result.Code, result.Message)
	require.Equal(t, "tesSUCCESS", result.Code,
		"Expected tesSUCCESS, got %s: %s", result.Code, result.Message)
}

// RequireTxFail asserts that a request failed with a specific code and left
// the ledger untouched.
func RequireTxFail(t *testing.T, result TxResult, expected tx.Result) {
	t.Helper()
	require.NoError(t, result.Err, "Unexpected state while applying request")
	require.False(t, result.Success,
		"Expected request failure with code %s, but request succeeded", expected)
	require.Equal(t, expected.String(), result.Code,
		"Expected failure code %s, got %s: %s", expected, result.Code, result.Message)
	require.Zero(t, result.Affected, "Failed request changed the ledger")
}

// RequireTxAborted asserts that a request hit an unexpected ledger state.
func RequireTxAborted(t *testing.T, result TxResult) {
	t.Helper()
	require.Error(t, result.Err, "Expected request to abort, got %s", result.Code)
	require.True(t, tx.IsFatal(result.Err) || result.Result.IsTef(),
		"Expected a fatal error, got %v", result.Err)
}

// RequireBalance asserts the available amount of an account's balance.
func RequireBalance(t *testing.T, env *TestEnv, account, asset string, expected int64) {
	t.Helper()
	actual := env.Balance(account, asset).Amount
	require.Equal(t, expected, actual,
		"Account %s %s balance mismatch: expected %s, got %s",
		account, asset, Format(expected), Format(actual))
}

// RequireLocked asserts the locked amount of an account's balance.
func RequireLocked(t *testing.T, env *TestEnv, account, asset string, expected int64) {
	t.Helper()
	actual := env.Balance(account, asset).Locked
	require.Equal(t, expected, actual,
		"Account %s %s locked mismatch: expected %s, got %s",
		account, asset, Format(expected), Format(actual))
}

// RequireOfferCount asserts the number of offers on one side of a book.
func RequireOfferCount(t *testing.T, env *TestEnv, orderBookID uint64, base, quote string, isBuy bool, expected int) {
	t.Helper()
	offers := env.Offers(orderBookID, base, quote, isBuy)
	require.Len(t, offers, expected,
		"Book %d %s/%s buy=%v offer count mismatch", orderBookID, base, quote, isBuy)
}

// RequireAssetConserved asserts that the issuance parts of an asset add up
// to its maximum and that every balance together holds exactly what was
// issued.
func RequireAssetConserved(t *testing.T, env *TestEnv, code string) {
	t.Helper()
	a := env.Asset(code)
	require.Equal(t, a.MaxIssuanceAmount, a.AvailableForIssuance+a.PendingIssuance+a.Issued,
		"Asset %s issuance does not add up", code)

	var held int64
	for _, b := range env.Balances(code) {
		require.GreaterOrEqual(t, b.Amount, int64(0), "Balance %s is negative", b.BalanceID)
		require.GreaterOrEqual(t, b.Locked, int64(0), "Balance %s has negative lock", b.BalanceID)
		held += b.Amount + b.Locked
	}
	require.Equal(t, a.Issued, held,
		"Asset %s: issued %s but balances hold %s", code, Format(a.Issued), Format(held))
}
