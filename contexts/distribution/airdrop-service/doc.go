// Package airdropservice distributes a pool pro-rata over the holder
// registry. Eligibility and redirect flags live here; balances are read
// from and moved through the token-ledger context via ports.
//
// The distribution run is deliberately two-pass: pass one fixes the
// eligible total from a balance snapshot, pass two moves each share from
// the funding account. A funding shortfall aborts mid-pass and leaves the
// shares already moved in place; that partial-failure mode is part of the
// published contract, not an oversight.
package airdropservice
