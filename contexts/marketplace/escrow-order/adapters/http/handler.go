package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"bazaar/contexts/marketplace/escrow-order/application/commands"
	"bazaar/contexts/marketplace/escrow-order/application/queries"
	"bazaar/contexts/marketplace/escrow-order/domain/entities"
	"bazaar/contexts/marketplace/escrow-order/ports"
	httptransport "bazaar/contexts/marketplace/escrow-order/transport/http"
)

type Handler struct {
	CreateOrder     commands.CreateOrderUseCase
	ConfirmPayment  commands.ConfirmPaymentUseCase
	StartWork       commands.StartWorkUseCase
	Deliver         commands.DeliverOrderUseCase
	RequestRevision commands.RequestRevisionUseCase
	AcceptDelivery  commands.AcceptDeliveryUseCase
	RaiseDispute    commands.RaiseDisputeUseCase
	ResolveDispute  commands.ResolveDisputeUseCase
	GetOrder        queries.GetOrderUseCase
	ListOrders      queries.ListOrdersUseCase
	Logger          *slog.Logger
}

func (h Handler) BuyNowHandler(
	ctx context.Context,
	buyerID string,
	req httptransport.BuyNowRequest,
) (httptransport.OrderResponse, error) {
	order, err := h.CreateOrder.BuyNow(ctx, commands.BuyNowCommand{
		ListingID: req.ListingID,
		BuyerID:   buyerID,
	})
	if err != nil {
		return httptransport.OrderResponse{}, err
	}
	return httptransport.OrderResponse{Status: "success", Data: toDTO(order)}, nil
}

func (h Handler) ConfirmPaymentHandler(
	ctx context.Context,
	req httptransport.ConfirmPaymentRequest,
) (httptransport.OrderResponse, error) {
	order, err := h.ConfirmPayment.Execute(ctx, commands.ConfirmPaymentCommand{
		PaymentRef: req.PaymentRef,
	})
	if err != nil {
		return httptransport.OrderResponse{}, err
	}
	return httptransport.OrderResponse{Status: "success", Data: toDTO(order)}, nil
}

func (h Handler) StartWorkHandler(
	ctx context.Context,
	actor ports.Actor,
	orderID string,
) (httptransport.OrderResponse, error) {
	order, err := h.StartWork.Execute(ctx, commands.StartWorkCommand{OrderID: orderID, Actor: actor})
	if err != nil {
		return httptransport.OrderResponse{}, err
	}
	return httptransport.OrderResponse{Status: "success", Data: toDTO(order)}, nil
}

func (h Handler) DeliverHandler(
	ctx context.Context,
	actor ports.Actor,
	orderID string,
	req httptransport.DeliverRequest,
) (httptransport.OrderResponse, error) {
	order, err := h.Deliver.Execute(ctx, commands.DeliverOrderCommand{
		OrderID:     orderID,
		Actor:       actor,
		Message:     req.Message,
		Attachments: req.Attachments,
	})
	if err != nil {
		return httptransport.OrderResponse{}, err
	}
	return httptransport.OrderResponse{Status: "success", Data: toDTO(order)}, nil
}

func (h Handler) RequestRevisionHandler(
	ctx context.Context,
	actor ports.Actor,
	orderID string,
	req httptransport.RevisionRequest,
) (httptransport.OrderResponse, error) {
	order, err := h.RequestRevision.Execute(ctx, commands.RequestRevisionCommand{
		OrderID: orderID,
		Actor:   actor,
		Note:    req.Note,
	})
	if err != nil {
		return httptransport.OrderResponse{}, err
	}
	return httptransport.OrderResponse{Status: "success", Data: toDTO(order)}, nil
}

func (h Handler) AcceptDeliveryHandler(
	ctx context.Context,
	actor ports.Actor,
	orderID string,
) (httptransport.OrderResponse, error) {
	order, err := h.AcceptDelivery.Execute(ctx, commands.AcceptDeliveryCommand{
		OrderID: orderID,
		Actor:   actor,
	})
	if err != nil {
		return httptransport.OrderResponse{}, err
	}
	return httptransport.OrderResponse{Status: "success", Data: toDTO(order)}, nil
}

func (h Handler) RaiseDisputeHandler(
	ctx context.Context,
	actor ports.Actor,
	orderID string,
	req httptransport.DisputeRequest,
) (httptransport.OrderResponse, error) {
	order, err := h.RaiseDispute.Execute(ctx, commands.RaiseDisputeCommand{
		OrderID: orderID,
		Actor:   actor,
		Reason:  req.Reason,
	})
	if err != nil {
		return httptransport.OrderResponse{}, err
	}
	return httptransport.OrderResponse{Status: "success", Data: toDTO(order)}, nil
}

func (h Handler) ResolveDisputeHandler(
	ctx context.Context,
	actor ports.Actor,
	orderID string,
	req httptransport.ResolveRequest,
) (httptransport.OrderResponse, error) {
	order, err := h.ResolveDispute.Execute(ctx, commands.ResolveDisputeCommand{
		OrderID:    orderID,
		Actor:      actor,
		Resolution: req.Resolution,
		Note:       req.Note,
	})
	if err != nil {
		return httptransport.OrderResponse{}, err
	}
	return httptransport.OrderResponse{Status: "success", Data: toDTO(order)}, nil
}

func (h Handler) GetOrderHandler(
	ctx context.Context,
	actor ports.Actor,
	orderID string,
) (httptransport.OrderDetailResponse, error) {
	detail, err := h.GetOrder.Execute(ctx, queries.GetOrderQuery{OrderID: orderID, Actor: actor})
	if err != nil {
		return httptransport.OrderDetailResponse{}, err
	}

	data := httptransport.OrderDetailData{
		Order:      toDTO(detail.Order),
		Deliveries: make([]httptransport.DeliveryDTO, 0, len(detail.Deliveries)),
		Audit:      make([]httptransport.AuditDTO, 0, len(detail.Audit)),
	}
	for _, delivery := range detail.Deliveries {
		data.Deliveries = append(data.Deliveries, httptransport.DeliveryDTO{
			DeliveryID:  delivery.DeliveryID,
			Message:     delivery.Message,
			Attachments: delivery.Attachments,
			SubmittedAt: delivery.SubmittedAt.UTC().Format(time.RFC3339),
		})
	}
	for _, entry := range detail.Audit {
		data.Audit = append(data.Audit, httptransport.AuditDTO{
			FromStatus: string(entry.FromStatus),
			ToStatus:   string(entry.ToStatus),
			ActorID:    entry.ActorID,
			Note:       entry.Note,
			OccurredAt: entry.OccurredAt.UTC().Format(time.RFC3339),
		})
	}
	return httptransport.OrderDetailResponse{Status: "success", Data: data}, nil
}

func (h Handler) ListOrdersHandler(
	ctx context.Context,
	actor ports.Actor,
	role string,
	limit int,
	offset int,
) (httptransport.OrderListResponse, error) {
	items, err := h.ListOrders.Execute(ctx, queries.ListOrdersQuery{
		Actor:  actor,
		Role:   role,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return httptransport.OrderListResponse{}, err
	}
	resp := httptransport.OrderListResponse{
		Status: "success",
		Data:   make([]httptransport.OrderDTO, 0, len(items)),
	}
	for _, item := range items {
		resp.Data = append(resp.Data, toDTO(item))
	}
	return resp, nil
}

func toDTO(order entities.Order) httptransport.OrderDTO {
	dto := httptransport.OrderDTO{
		OrderID:       order.OrderID,
		OriginOfferID: order.OriginOfferID,
		ListingID:     order.ListingID,
		BuyerID:       order.BuyerID,
		SellerID:      order.SellerID,
		Amount:        order.Amount,
		Currency:      order.Currency,
		Status:        string(order.Status),
		PaymentRef:    order.PaymentRef,
		Revisions:     order.Revisions,
		MaxRevisions:  order.MaxRevisions,
		CreatedAt:     order.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     order.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if !order.DeliveredAt.IsZero() {
		dto.DeliveredAt = order.DeliveredAt.UTC().Format(time.RFC3339)
	}
	return dto
}
