// Package salewindowservice gates purchase-to-token conversion by a time
// window, a whitelist, per-transaction bounds and a remaining hard cap.
// The window stores no phase field; Pending, Open and Closed are derived
// from the clock and the remaining counter on every call.
//
// Purchase follows checks-effects-interactions: all ledger and cap state
// is updated before the payment is forwarded to the beneficiary, and a
// failed forward compensates every prior effect so the call stays
// all-or-nothing.
package salewindowservice
