package entities

import "time"

// AccountFlags carries the per-account eligibility inputs. TreasuryBox
// marks vesting boxes out of threshold-based eligibility; Exchanger marks
// redirect-eligible exchange accounts; Destination is the optional
// redirect target for the account's share.
type AccountFlags struct {
	Account     string
	TreasuryBox bool
	Exchanger   bool
	Destination string
}

type RunStatus string

const (
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// AirdropRun is the persisted summary of one distribution run.
type AirdropRun struct {
	RunID          string
	FundingAccount string
	PoolAmount     uint64
	EligibleTotal  uint64
	TransferCount  int
	Distributed    uint64
	Status         RunStatus
	FailureReason  string
	StartedAt      time.Time
	FinishedAt     time.Time
}
