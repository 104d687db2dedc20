package testing

import "github.com/LeJamon/goTokend/internal/core/tx"

// TxResult represents the result of applying a request.
type TxResult struct {
	// Code is the result code name (e.g., "tesSUCCESS").
	Code string

	// Result is the engine result code.
	Result tx.Result

	// Success indicates whether the request was applied to the ledger.
	Success bool

	// Message provides additional details about the result.
	Message string

	// Output is the request specific response.
	Output any

	// Affected is the number of ledger entries the request changed.
	Affected int

	// Err is set when the request was aborted by an unexpected state.
	Err error
}

// IsRejected reports whether the request was rejected in preflight.
func (r TxResult) IsRejected() bool {
	return r.Result.Category() == tx.CategoryMalformed
}
