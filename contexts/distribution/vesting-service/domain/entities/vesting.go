package entities

import "time"

// VestingBox is immutable after creation. The box account holds the
// locked value on the ledger until the release time passes.
type VestingBox struct {
	BoxID       string
	BoxAccount  string
	Beneficiary string
	ReleaseTime time.Time
	CreatedAt   time.Time
}

// IsAvailable reports whether the box has matured at the given instant.
func (b VestingBox) IsAvailable(now time.Time) bool {
	return !now.Before(b.ReleaseTime)
}

// GrantRecord captures one founder grant: the immediate leg and the two
// vesting boxes it produced. The three legs floor to 33/33/34 percent,
// so their sum may undershoot TotalValue; the pool is still debited by
// the full TotalValue.
type GrantRecord struct {
	GrantID    string
	Founder    string
	TotalValue uint64
	Immediate  uint64
	Box1ID     string
	Box1Value  uint64
	Box2ID     string
	Box2Value  uint64
	OccurredAt time.Time
}

// GrantPool is the orchestrator budget: how much grant value is still
// available and the per-grant floor.
type GrantPool struct {
	Remaining uint64
	MinTx     uint64
}
