package events

import (
	"encoding/json"
	"time"
)

// Envelope is the canonical event shape shared by every context's outbox
// and the worker relays. Consumers downstream (indexers, audit) key on
// EventType plus the typed Data payload.
type Envelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

// Ledger and distribution event types. These names are part of the
// external observability contract; renaming one is a breaking change.
const (
	TypeTransfer       = "ledger.transfer"
	TypeApproval       = "ledger.approval"
	TypeAirdrop        = "airdrop.distributed"
	TypeSetDestination = "airdrop.set_destination"
	TypeSetExchanger   = "airdrop.set_exchanger"
	TypeTokenSold      = "sale.token_sold"
	TypeCapIncreased   = "sale.cap_increased"
	TypeVestingClaimed = "vesting.claimed"
	TypeFounderGrant   = "vesting.founder_grant"
)
