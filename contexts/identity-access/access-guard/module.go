package accessguard

import (
	"log/slog"

	"bazaar/contexts/identity-access/access-guard/adapters/memory"
	"bazaar/contexts/identity-access/access-guard/application"
	"bazaar/contexts/identity-access/access-guard/domain/services"
	"bazaar/contexts/identity-access/access-guard/ports"
)

type Module struct {
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Tiers      *services.TierMap
	Identities ports.IdentityStore
	Resources  ports.ResourceDirectory
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	tiers := services.DefaultTiers()
	if deps.Tiers != nil {
		tiers = *deps.Tiers
	}
	return Module{
		Service: application.Service{
			Tiers:      tiers,
			Identities: deps.Identities,
			Resources:  deps.Resources,
			Logger:     deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Identities: store,
		Resources:  store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
