package http

type RunRequest struct {
	PoolAmount uint64 `json:"pool_amount"`
}

type SetExchangerRequest struct {
	Account string `json:"account"`
	Flag    bool   `json:"flag"`
}

type SetDestinationRequest struct {
	Account     string `json:"account"`
	Destination string `json:"destination"`
}

type SetTreasuryBoxRequest struct {
	Account string `json:"account"`
	Flag    bool   `json:"flag"`
}

type AckResponse struct {
	Status string `json:"status"`
}

type RunDTO struct {
	RunID          string `json:"run_id"`
	FundingAccount string `json:"funding_account"`
	PoolAmount     uint64 `json:"pool_amount"`
	EligibleTotal  uint64 `json:"eligible_total"`
	TransferCount  int    `json:"transfer_count"`
	Distributed    uint64 `json:"distributed"`
	Status         string `json:"status"`
	FailureReason  string `json:"failure_reason,omitempty"`
	StartedAt      string `json:"started_at"`
	FinishedAt     string `json:"finished_at"`
}

type RunResponse struct {
	Status string `json:"status"`
	Data   RunDTO `json:"data"`
}

type RunListResponse struct {
	Status string   `json:"status"`
	Data   []RunDTO `json:"data"`
}

type FlagsResponse struct {
	Status string `json:"status"`
	Data   struct {
		Account     string `json:"account"`
		TreasuryBox bool   `json:"treasury_box"`
		Exchanger   bool   `json:"exchanger"`
		Destination string `json:"destination,omitempty"`
	} `json:"data"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
