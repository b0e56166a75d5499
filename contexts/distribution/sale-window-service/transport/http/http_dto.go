package http

type PurchaseRequest struct {
	Buyer        string `json:"buyer"`
	PaymentValue uint64 `json:"payment_value"`
}

type IncreaseHardCapRequest struct {
	Amount uint64 `json:"amount"`
}

type SaleDTO struct {
	SaleID       string `json:"sale_id"`
	Buyer        string `json:"buyer"`
	PaymentValue uint64 `json:"payment_value"`
	Tokens       uint64 `json:"tokens"`
	Rate         uint64 `json:"rate"`
	OccurredAt   string `json:"occurred_at"`
}

type SaleResponse struct {
	Status string  `json:"status"`
	Data   SaleDTO `json:"data"`
}

type SaleListResponse struct {
	Status string    `json:"status"`
	Data   []SaleDTO `json:"data"`
}

type WindowDTO struct {
	HardCap   uint64 `json:"hard_cap"`
	Remaining uint64 `json:"remaining"`
	StartTime string `json:"start_time"`
	StopTime  string `json:"stop_time"`
	MinTx     uint64 `json:"min_tx"`
	MaxTx     uint64 `json:"max_tx"`
}

type WindowResponse struct {
	Status string    `json:"status"`
	Data   WindowDTO `json:"data"`
}

type StatusResponse struct {
	Status string `json:"status"`
	Data   struct {
		Phase            string    `json:"phase"`
		Window           WindowDTO `json:"window"`
		SaleCount        int       `json:"sale_count"`
		TokensSold       uint64    `json:"tokens_sold"`
		PaymentCollected uint64    `json:"payment_collected"`
		AsOf             string    `json:"as_of"`
	} `json:"data"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
