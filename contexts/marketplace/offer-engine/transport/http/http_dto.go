package httptransport

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateOfferRequest struct {
	ListingID string `json:"listing_id"`
	Amount    int64  `json:"amount"`
	Message   string `json:"message,omitempty"`
}

type CounterOfferRequest struct {
	CounterAmount int64 `json:"counter_amount"`
}

type RejectOfferRequest struct {
	Reason string `json:"reason,omitempty"`
}

type OfferDTO struct {
	OfferID       string `json:"offer_id"`
	ListingID     string `json:"listing_id"`
	BuyerID       string `json:"buyer_id"`
	SellerID      string `json:"seller_id"`
	Amount        int64  `json:"amount"`
	CounterAmount int64  `json:"counter_amount,omitempty"`
	Message       string `json:"message,omitempty"`
	Status        string `json:"status"`
	ExpiresAt     string `json:"expires_at"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type OfferResponse struct {
	Status string   `json:"status"`
	Data   OfferDTO `json:"data"`
}

type OfferListResponse struct {
	Status string     `json:"status"`
	Data   []OfferDTO `json:"data"`
}

type AcceptOfferData struct {
	Offer    OfferDTO `json:"offer"`
	OrderID  string   `json:"order_id"`
	Replayed bool     `json:"replayed,omitempty"`
}

type AcceptOfferResponse struct {
	Status string          `json:"status"`
	Data   AcceptOfferData `json:"data"`
}
