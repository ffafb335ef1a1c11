package offerengine

import (
	"log/slog"
	"time"

	httpadapter "bazaar/contexts/marketplace/offer-engine/adapters/http"
	"bazaar/contexts/marketplace/offer-engine/adapters/memory"
	"bazaar/contexts/marketplace/offer-engine/application/commands"
	"bazaar/contexts/marketplace/offer-engine/application/queries"
	"bazaar/contexts/marketplace/offer-engine/application/workers"
	"bazaar/contexts/marketplace/offer-engine/ports"
)

type Module struct {
	CreateOffer   commands.CreateOfferUseCase
	AcceptOffer   commands.AcceptOfferUseCase
	RejectOffer   commands.RejectOfferUseCase
	CounterOffer  commands.CounterOfferUseCase
	WithdrawOffer commands.WithdrawOfferUseCase
	LapseOffer    commands.LapseOfferUseCase
	GetOffer      queries.GetOfferUseCase
	ListOffers    queries.ListOffersUseCase
	OfferExpirer  workers.OfferExpirer
	Handler       httpadapter.Handler
	Repository    ports.Repository
	Store         *memory.Store
}

type Dependencies struct {
	Repository        ports.Repository
	Listings          ports.ListingSource
	Orders            ports.OrderFactory
	Notifier          ports.Notifier
	Clock             ports.Clock
	IDGen             ports.IDGenerator
	OfferTTL          time.Duration
	CeilingMultiplier int
	Logger            *slog.Logger
}

func NewModule(deps Dependencies) Module {
	create := commands.CreateOfferUseCase{
		Offers:            deps.Repository,
		Listings:          deps.Listings,
		Notifier:          deps.Notifier,
		Clock:             deps.Clock,
		IDGenerator:       deps.IDGen,
		OfferTTL:          deps.OfferTTL,
		CeilingMultiplier: deps.CeilingMultiplier,
		Logger:            deps.Logger,
	}
	accept := commands.AcceptOfferUseCase{
		Offers:   deps.Repository,
		Listings: deps.Listings,
		Orders:   deps.Orders,
		Notifier: deps.Notifier,
		Clock:    deps.Clock,
		Logger:   deps.Logger,
	}
	reject := commands.RejectOfferUseCase{
		Offers:   deps.Repository,
		Notifier: deps.Notifier,
		Clock:    deps.Clock,
		Logger:   deps.Logger,
	}
	counter := commands.CounterOfferUseCase{
		Offers:            deps.Repository,
		Listings:          deps.Listings,
		Notifier:          deps.Notifier,
		Clock:             deps.Clock,
		CeilingMultiplier: deps.CeilingMultiplier,
		Logger:            deps.Logger,
	}
	withdraw := commands.WithdrawOfferUseCase{
		Offers:   deps.Repository,
		Notifier: deps.Notifier,
		Clock:    deps.Clock,
		Logger:   deps.Logger,
	}
	lapse := commands.LapseOfferUseCase{
		Offers:   deps.Repository,
		Notifier: deps.Notifier,
		Clock:    deps.Clock,
		Logger:   deps.Logger,
	}
	getOffer := queries.GetOfferUseCase{Offers: deps.Repository, Clock: deps.Clock}
	listOffers := queries.ListOffersUseCase{Offers: deps.Repository, Clock: deps.Clock}

	return Module{
		CreateOffer:   create,
		AcceptOffer:   accept,
		RejectOffer:   reject,
		CounterOffer:  counter,
		WithdrawOffer: withdraw,
		LapseOffer:    lapse,
		GetOffer:      getOffer,
		ListOffers:    listOffers,
		OfferExpirer: workers.OfferExpirer{
			Offers: deps.Repository,
			Clock:  deps.Clock,
			Logger: deps.Logger,
		},
		Handler: httpadapter.Handler{
			CreateOffer:   create,
			AcceptOffer:   accept,
			RejectOffer:   reject,
			CounterOffer:  counter,
			WithdrawOffer: withdraw,
			GetOffer:      getOffer,
			ListOffers:    listOffers,
			Logger:        deps.Logger,
		},
		Repository: deps.Repository,
	}
}

func NewInMemoryModule(
	listings ports.ListingSource,
	orders ports.OrderFactory,
	logger *slog.Logger,
) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository: store,
		Listings:   listings,
		Orders:     orders,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
