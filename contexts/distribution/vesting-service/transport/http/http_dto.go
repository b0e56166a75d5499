package http

type GrantRequest struct {
	Founder    string `json:"founder"`
	TotalValue uint64 `json:"total_value"`
}

type RegisterFounderRequest struct {
	Founder string `json:"founder"`
}

type AckResponse struct {
	Status string `json:"status"`
}

type ClaimResponse struct {
	Status string `json:"status"`
	Data   struct {
		BoxID string `json:"box_id"`
		Value uint64 `json:"value"`
	} `json:"data"`
}

type AvailabilityResponse struct {
	Status string `json:"status"`
	Data   struct {
		BoxID     string `json:"box_id"`
		Available bool   `json:"available"`
	} `json:"data"`
}

type BoxDTO struct {
	BoxID       string `json:"box_id"`
	BoxAccount  string `json:"box_account"`
	Beneficiary string `json:"beneficiary"`
	ReleaseTime string `json:"release_time"`
	CreatedAt   string `json:"created_at"`
}

type BoxResponse struct {
	Status string `json:"status"`
	Data   BoxDTO `json:"data"`
}

type BoxListResponse struct {
	Status string   `json:"status"`
	Data   []BoxDTO `json:"data"`
}

type GrantDTO struct {
	GrantID    string `json:"grant_id"`
	Founder    string `json:"founder"`
	TotalValue uint64 `json:"total_value"`
	Immediate  uint64 `json:"immediate"`
	Box1ID     string `json:"box1_id"`
	Box1Value  uint64 `json:"box1_value"`
	Box2ID     string `json:"box2_id"`
	Box2Value  uint64 `json:"box2_value"`
	OccurredAt string `json:"occurred_at"`
}

type GrantResponse struct {
	Status string   `json:"status"`
	Data   GrantDTO `json:"data"`
}

type GrantListResponse struct {
	Status string     `json:"status"`
	Data   []GrantDTO `json:"data"`
}

type PoolResponse struct {
	Status string `json:"status"`
	Data   struct {
		Remaining uint64 `json:"remaining"`
		MinTx     uint64 `json:"min_tx"`
	} `json:"data"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
