package application

import (
	"context"

	"bazaar/contexts/identity-access/access-guard/ports"
)

// GuardFunc is one composable guard step. Steps receive the caller, may
// refine it, and stop the chain by returning an error.
type GuardFunc func(ctx context.Context, caller ports.Caller) (ports.Caller, error)

// Chain executes guard steps in order, threading the caller through.
// Keeps guard composition testable away from the transport layer.
func Chain(steps ...GuardFunc) GuardFunc {
	return func(ctx context.Context, caller ports.Caller) (ports.Caller, error) {
		current := caller
		for _, step := range steps {
			next, err := step(ctx, current)
			if err != nil {
				return ports.Caller{}, err
			}
			current = next
		}
		return current, nil
	}
}

// RoleStep adapts Service.Authorize into a chain step.
func (s Service) RoleStep(allowed ...ports.Role) GuardFunc {
	return func(_ context.Context, caller ports.Caller) (ports.Caller, error) {
		if err := s.Authorize(caller, allowed...); err != nil {
			return ports.Caller{}, err
		}
		return caller, nil
	}
}

// OwnershipStep adapts Service.CheckOwnership into a chain step. The
// resource id is resolved per request by the supplied function.
func (s Service) OwnershipStep(resourceType string, resourceID func(context.Context) string) GuardFunc {
	return func(ctx context.Context, caller ports.Caller) (ports.Caller, error) {
		if err := s.CheckOwnership(ctx, caller, resourceType, resourceID(ctx)); err != nil {
			return ports.Caller{}, err
		}
		return caller, nil
	}
}

// SellerStep and BuyerStep adapt the capability checks.
func (s Service) SellerStep() GuardFunc {
	return func(ctx context.Context, caller ports.Caller) (ports.Caller, error) {
		if err := s.RequireSeller(ctx, caller); err != nil {
			return ports.Caller{}, err
		}
		return caller, nil
	}
}

func (s Service) BuyerStep() GuardFunc {
	return func(ctx context.Context, caller ports.Caller) (ports.Caller, error) {
		if err := s.RequireBuyer(ctx, caller); err != nil {
			return ports.Caller{}, err
		}
		return caller, nil
	}
}
