// Package testing provides test infrastructure for ledger request testing.
//
// # Overview
//
// The testing package provides:
//   - TestEnv: a ledger backed by in-memory storage with the request engine
//     and a manual clock
//   - Amount helpers: Units and Dec build fixed-point amounts
//   - Assertions: helpers for results, balances, books and conservation
//
// # Basic Usage
//
//	func TestTrade(t *testing.T) {
//	    env := testing.NewTestEnv(t)
//	    env.CreateAccounts("issuer", "alice", "bob")
//	    env.CreateAsset("TKN", "issuer", testing.Units(1000000), 0)
//	    env.CreateAsset("USD", "issuer", testing.Units(1000000), 0)
//	    env.CreateAssetPair("TKN", "USD", testing.Units(1), true)
//
//	    aliceTKN := env.Fund("alice", "TKN", testing.Units(100))
//	    aliceUSD := env.BalanceID("alice", "USD")
//
//	    req := offer.NewManageOffer("alice", aliceTKN, aliceUSD, testing.Units(100), testing.Units(2), false)
//	    testing.RequireTxSuccess(t, env.Submit(req))
//	}
//
// # Fees
//
// Fees are off unless the environment is built with WithFees or
// WithFeeLookup. Every fee is credited to CommissionAccount.
//
// # Clock Control
//
// Requests are applied at the test clock's time, in unix seconds:
//
//	env.AdvanceTime(10 * time.Second)
//	env.SetTime(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
//	env.Now()
package testing
