package httptransport

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateListingRequest struct {
	Title    string `json:"title"`
	Type     string `json:"type,omitempty"`
	Price    int64  `json:"price"`
	Currency string `json:"currency,omitempty"`
	Activate bool   `json:"activate,omitempty"`
}

type UpdateListingRequest struct {
	Title string `json:"title,omitempty"`
	Price int64  `json:"price,omitempty"`
}

type ListingDTO struct {
	ListingID string `json:"listing_id"`
	SellerID  string `json:"seller_id"`
	Title     string `json:"title"`
	Type      string `json:"type,omitempty"`
	Price     int64  `json:"price"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type ListingResponse struct {
	Status string     `json:"status"`
	Data   ListingDTO `json:"data"`
}

type ListingListResponse struct {
	Status string       `json:"status"`
	Data   []ListingDTO `json:"data"`
}
