package entities

import "time"

type WindowPhase string

const (
	PhasePending WindowPhase = "pending"
	PhaseOpen    WindowPhase = "open"
	PhaseClosed  WindowPhase = "closed"
)

// WindowState is the sale configuration plus the one mutable counter.
// Everything except Remaining and HardCap is fixed at construction.
type WindowState struct {
	HardCap   uint64
	Remaining uint64
	StartTime time.Time
	StopTime  time.Time
	MinTx     uint64
	MaxTx     uint64
}

// Phase derives the window phase at the given instant. A drained cap
// closes the window even inside the time range.
func (w WindowState) Phase(now time.Time) WindowPhase {
	if now.Before(w.StartTime) {
		return PhasePending
	}
	if !now.Before(w.StopTime) || w.Remaining == 0 {
		return PhaseClosed
	}
	return PhaseOpen
}

type SaleRecord struct {
	SaleID       string
	Buyer        string
	PaymentValue uint64
	Tokens       uint64
	Rate         uint64
	OccurredAt   time.Time
}

// SalesSummary aggregates the accepted sales of the window.
type SalesSummary struct {
	SaleCount        int
	TokensSold       uint64
	PaymentCollected uint64
}

// WindowStatus is the query view of the window: the derived phase, the
// configuration and the sale counters at one instant.
type WindowStatus struct {
	Phase WindowPhase
	State WindowState
	Sales SalesSummary
	AsOf  time.Time
}
