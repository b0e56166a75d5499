// Package tokenledger owns the balance and allowance books for the asset.
//
// The memory store is the authoritative single-writer state described in the
// runtime contract; the postgres adapter mirrors transfer/approval records and
// the holder registry for external indexers. Every amount mutation routes
// through internal/shared/safemath so the conservation invariant
// (sum of balances == total supply) holds under any input.
package tokenledger
