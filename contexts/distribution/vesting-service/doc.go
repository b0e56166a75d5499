// Package vestingservice locks token value in time-gated box accounts
// and hands founder grants out as a three-way split: an immediate leg
// plus two boxes with fixed maturities. Box balances live on the token
// ledger; a box account is marked as a treasury box in the airdrop flag
// store at creation so it never counts as an eligible holder.
//
// Claiming is deliberately unrestricted. Anyone may trigger a matured
// box; the balance always goes to the recorded beneficiary.
package vestingservice
