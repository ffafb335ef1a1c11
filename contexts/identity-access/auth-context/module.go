package authcontext

import (
	"log/slog"

	"bazaar/contexts/identity-access/auth-context/application"
	"bazaar/contexts/identity-access/auth-context/ports"
)

type Module struct {
	Resolver application.Resolver
}

type Dependencies struct {
	Secret   string
	Issuer   string
	Audience string
	Clock    ports.Clock
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Resolver: application.Resolver{
			Secret:   []byte(deps.Secret),
			Issuer:   deps.Issuer,
			Audience: deps.Audience,
			Clock:    deps.Clock,
			Logger:   deps.Logger,
		},
	}
}
