package httptransport

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WithdrawalRequest is the payload for POST withdrawal endpoints.
type WithdrawalRequest struct {
	Amount int64 `json:"amount"`
}

type BalanceDTO struct {
	SellerID  string `json:"seller_id"`
	Available int64  `json:"available"`
	Pending   int64  `json:"pending"`
	Withdrawn int64  `json:"withdrawn"`
}

type WithdrawalDTO struct {
	WithdrawalID  string `json:"withdrawal_id"`
	SellerID      string `json:"seller_id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Status        string `json:"status"`
	TransferID    string `json:"transfer_id,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type BalanceResponse struct {
	Status string     `json:"status"`
	Data   BalanceDTO `json:"data"`
}

type WithdrawalResponse struct {
	Status string        `json:"status"`
	Data   WithdrawalDTO `json:"data"`
}

type WithdrawalListResponse struct {
	Status string          `json:"status"`
	Data   []WithdrawalDTO `json:"data"`
}
