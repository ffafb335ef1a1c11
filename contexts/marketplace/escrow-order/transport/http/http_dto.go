package httptransport

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type BuyNowRequest struct {
	ListingID string `json:"listing_id"`
}

type ConfirmPaymentRequest struct {
	PaymentRef string `json:"payment_ref"`
}

type DeliverRequest struct {
	Message     string   `json:"message"`
	Attachments []string `json:"attachments"`
}

type RevisionRequest struct {
	Note string `json:"note,omitempty"`
}

type DisputeRequest struct {
	Reason string `json:"reason,omitempty"`
}

type ResolveRequest struct {
	Resolution string `json:"resolution"`
	Note       string `json:"note,omitempty"`
}

type OrderDTO struct {
	OrderID       string `json:"order_id"`
	OriginOfferID string `json:"origin_offer_id,omitempty"`
	ListingID     string `json:"listing_id"`
	BuyerID       string `json:"buyer_id"`
	SellerID      string `json:"seller_id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Status        string `json:"status"`
	PaymentRef    string `json:"payment_ref,omitempty"`
	Revisions     int    `json:"revisions"`
	MaxRevisions  int    `json:"max_revisions"`
	DeliveredAt   string `json:"delivered_at,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type DeliveryDTO struct {
	DeliveryID  string   `json:"delivery_id"`
	Message     string   `json:"message"`
	Attachments []string `json:"attachments"`
	SubmittedAt string   `json:"submitted_at"`
}

type AuditDTO struct {
	FromStatus string `json:"from_status,omitempty"`
	ToStatus   string `json:"to_status"`
	ActorID    string `json:"actor_id,omitempty"`
	Note       string `json:"note,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

type OrderResponse struct {
	Status string   `json:"status"`
	Data   OrderDTO `json:"data"`
}

type OrderDetailData struct {
	Order      OrderDTO      `json:"order"`
	Deliveries []DeliveryDTO `json:"deliveries"`
	Audit      []AuditDTO    `json:"audit"`
}

type OrderDetailResponse struct {
	Status string          `json:"status"`
	Data   OrderDetailData `json:"data"`
}

type OrderListResponse struct {
	Status string     `json:"status"`
	Data   []OrderDTO `json:"data"`
}
