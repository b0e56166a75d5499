package entities

import "time"

type TransferKind string

const (
	TransferKindTransfer TransferKind = "transfer"
	TransferKindMint     TransferKind = "mint"
	TransferKindBurn     TransferKind = "burn"
)

// TransferRecord is one applied balance movement. Mint records have an
// empty From; burn records have an empty To.
type TransferRecord struct {
	ID         string
	From       string
	To         string
	Value      uint64
	Kind       TransferKind
	Spender    string
	OccurredAt time.Time
}

// ApprovalRecord captures the allowance value after an approve or an
// increase/decrease adjustment.
type ApprovalRecord struct {
	ID         string
	Owner      string
	Spender    string
	Value      uint64
	OccurredAt time.Time
}

// HolderRecord is one registry entry: an account at the position it was
// first credited. The registry is append-only and de-duplicated; holding
// a zero balance later does not remove the entry.
type HolderRecord struct {
	Account       string
	Position      int
	FirstCreditAt time.Time
}
