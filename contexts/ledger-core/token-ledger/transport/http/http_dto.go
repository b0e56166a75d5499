package http

type TransferRequest struct {
	To    string `json:"to"`
	Value uint64 `json:"value"`
}

type TransferFromRequest struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value uint64 `json:"value"`
}

type ApproveRequest struct {
	Spender string `json:"spender"`
	Value   uint64 `json:"value"`
}

type AdjustApprovalRequest struct {
	Spender string `json:"spender"`
	Delta   uint64 `json:"delta"`
}

type MintRequest struct {
	To    string `json:"to"`
	Value uint64 `json:"value"`
}

type BurnRequest struct {
	Value uint64 `json:"value"`
}

type AckResponse struct {
	Status string `json:"status"`
}

type AllowanceData struct {
	Owner     string `json:"owner"`
	Spender   string `json:"spender"`
	Allowance uint64 `json:"allowance"`
}

type AllowanceResponse struct {
	Status string        `json:"status"`
	Data   AllowanceData `json:"data"`
}

type BalanceData struct {
	Account string `json:"account"`
	Balance uint64 `json:"balance"`
}

type BalanceResponse struct {
	Status string      `json:"status"`
	Data   BalanceData `json:"data"`
}

type SupplyResponse struct {
	Status string `json:"status"`
	Data   struct {
		TotalSupply uint64 `json:"total_supply"`
	} `json:"data"`
}

type HoldersResponse struct {
	Status string   `json:"status"`
	Data   []string `json:"data"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
