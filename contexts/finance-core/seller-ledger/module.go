package sellerledger

import (
	"log/slog"
	"time"

	httpadapter "bazaar/contexts/finance-core/seller-ledger/adapters/http"
	"bazaar/contexts/finance-core/seller-ledger/adapters/memory"
	"bazaar/contexts/finance-core/seller-ledger/application"
	"bazaar/contexts/finance-core/seller-ledger/application/workers"
	"bazaar/contexts/finance-core/seller-ledger/ports"
)

type Module struct {
	Service            application.Service
	ClearanceMaturator workers.ClearanceMaturator
	PayoutProcessor    workers.PayoutProcessor
	Handler            httpadapter.Handler
	Repository         ports.Repository
	Store              *memory.Store
}

type Dependencies struct {
	Repository         ports.Repository
	Gateway            ports.PayoutGateway
	Clock              ports.Clock
	IDGen              ports.IDGenerator
	FeeBps             int
	MinWithdrawalMinor int64
	ClearanceDelay     time.Duration
	Logger             *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:               deps.Repository,
		Gateway:            deps.Gateway,
		Clock:              deps.Clock,
		IDGen:              deps.IDGen,
		FeeBps:             deps.FeeBps,
		MinWithdrawalMinor: deps.MinWithdrawalMinor,
		ClearanceDelay:     deps.ClearanceDelay,
		Logger:             deps.Logger,
	}

	return Module{
		Service: service,
		ClearanceMaturator: workers.ClearanceMaturator{
			Ledger: deps.Repository,
			Clock:  deps.Clock,
			Logger: deps.Logger,
		},
		PayoutProcessor: workers.PayoutProcessor{
			Ledger:  deps.Repository,
			Gateway: deps.Gateway,
			Clock:   deps.Clock,
			Logger:  deps.Logger,
		},
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Repository: deps.Repository,
	}
}

func NewInMemoryModule(gateway ports.PayoutGateway, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository: store,
		Gateway:    gateway,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
