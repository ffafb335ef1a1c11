package escroworder

import (
	"log/slog"
	"time"

	httpadapter "bazaar/contexts/marketplace/escrow-order/adapters/http"
	"bazaar/contexts/marketplace/escrow-order/adapters/memory"
	"bazaar/contexts/marketplace/escrow-order/application/commands"
	"bazaar/contexts/marketplace/escrow-order/application/queries"
	"bazaar/contexts/marketplace/escrow-order/application/workers"
	"bazaar/contexts/marketplace/escrow-order/ports"
)

type Module struct {
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
	AutoAcceptor    workers.AutoAcceptor
	PaymentSweeper  workers.PaymentTimeoutSweeper
	OutboxRelay     workers.OutboxRelay
	Handler         httpadapter.Handler
	Repository      ports.Repository
	Store           *memory.Store
}

type Dependencies struct {
	Repository       ports.Repository
	Outbox           ports.OutboxRepository
	Listings         ports.ListingSource
	Payments         ports.PaymentGateway
	Ledger           ports.LedgerPoster
	Offers           ports.OfferLapser
	Publisher        ports.EventPublisher
	Clock            ports.Clock
	IDGen            ports.IDGenerator
	PaymentTimeout   time.Duration
	AutoAcceptWindow time.Duration
	Logger           *slog.Logger
}

func NewModule(deps Dependencies) Module {
	create := commands.CreateOrderUseCase{
		Orders:         deps.Repository,
		Listings:       deps.Listings,
		Payments:       deps.Payments,
		Clock:          deps.Clock,
		IDGenerator:    deps.IDGen,
		PaymentTimeout: deps.PaymentTimeout,
		Logger:         deps.Logger,
	}
	confirm := commands.ConfirmPaymentUseCase{
		Orders:      deps.Repository,
		Listings:    deps.Listings,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGen,
		Logger:      deps.Logger,
	}
	start := commands.StartWorkUseCase{
		Orders:      deps.Repository,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGen,
		Logger:      deps.Logger,
	}
	deliver := commands.DeliverOrderUseCase{
		Orders:      deps.Repository,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGen,
		Logger:      deps.Logger,
	}
	revision := commands.RequestRevisionUseCase{
		Orders:      deps.Repository,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGen,
		Logger:      deps.Logger,
	}
	accept := commands.AcceptDeliveryUseCase{
		Orders:      deps.Repository,
		Ledger:      deps.Ledger,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGen,
		Logger:      deps.Logger,
	}
	dispute := commands.RaiseDisputeUseCase{
		Orders:      deps.Repository,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGen,
		Logger:      deps.Logger,
	}
	resolve := commands.ResolveDisputeUseCase{
		Orders:      deps.Repository,
		Ledger:      deps.Ledger,
		Payments:    deps.Payments,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGen,
		Logger:      deps.Logger,
	}
	getOrder := queries.GetOrderUseCase{Orders: deps.Repository}
	listOrders := queries.ListOrdersUseCase{Orders: deps.Repository}

	return Module{
		CreateOrder:     create,
		ConfirmPayment:  confirm,
		StartWork:       start,
		Deliver:         deliver,
		RequestRevision: revision,
		AcceptDelivery:  accept,
		RaiseDispute:    dispute,
		ResolveDispute:  resolve,
		GetOrder:        getOrder,
		ListOrders:      listOrders,
		AutoAcceptor: workers.AutoAcceptor{
			Orders: deps.Repository,
			Accept: accept,
			Clock:  deps.Clock,
			Window: deps.AutoAcceptWindow,
			Logger: deps.Logger,
		},
		PaymentSweeper: workers.PaymentTimeoutSweeper{
			Orders:      deps.Repository,
			Offers:      deps.Offers,
			Clock:       deps.Clock,
			IDGenerator: deps.IDGen,
			Logger:      deps.Logger,
		},
		OutboxRelay: workers.OutboxRelay{
			Outbox:    deps.Outbox,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		},
		Handler: httpadapter.Handler{
			CreateOrder:     create,
			ConfirmPayment:  confirm,
			StartWork:       start,
			Deliver:         deliver,
			RequestRevision: revision,
			AcceptDelivery:  accept,
			RaiseDispute:    dispute,
			ResolveDispute:  resolve,
			GetOrder:        getOrder,
			ListOrders:      listOrders,
			Logger:          deps.Logger,
		},
		Repository: deps.Repository,
	}
}

func NewInMemoryModule(
	listings ports.ListingSource,
	payments ports.PaymentGateway,
	ledger ports.LedgerPoster,
	offers ports.OfferLapser,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository: store,
		Outbox:     store,
		Listings:   listings,
		Payments:   payments,
		Ledger:     ledger,
		Offers:     offers,
		Publisher:  publisher,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
