package testing

import "github.com/LeJamon/goTokend/internal/core/amount"

// Units converts whole units to fixed-point.
// For example, Units(100) returns 1,000,000.
func Units(n int64) int64 {
	return n * amount.ONE
}

// Dec parses a decimal string such as "12.5" into fixed-point units. It
// panics on malformed input and is meant for test literals.
func Dec(s string) int64 {
	v, err := amount.Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Format renders a fixed-point amount for failure messages.
func Format(v int64) string {
	return amount.Format(v)
}
