package http

type MembershipRequest struct {
	Account string `json:"account"`
}

type CheckResponse struct {
	Status string `json:"status"`
	Data   struct {
		Account string `json:"account"`
		Allowed bool   `json:"allowed"`
	} `json:"data"`
}

type AckResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
