package application

import (
	"context"
	"log/slog"
	"strings"

	domainerrors "bazaar/contexts/identity-access/access-guard/domain/errors"
	"bazaar/contexts/identity-access/access-guard/domain/services"
	"bazaar/contexts/identity-access/access-guard/ports"

	"github.com/google/uuid"
)

// Service composes the guard checks call sites chain together:
// role authorization, resource ownership, and capability checks.
type Service struct {
	Tiers      services.TierMap
	Identities ports.IdentityStore
	Resources  ports.ResourceDirectory
	Logger     *slog.Logger
}

// Authorize passes when the caller's role tier clears the minimum tier
// among the allowed roles.
func (s Service) Authorize(caller ports.Caller, allowed ...ports.Role) error {
	if !caller.Authenticated() {
		return domainerrors.ErrUnauthenticated
	}
	if !s.Tiers.Allows(caller.Role, allowed...) {
		resolveLogger(s.Logger).Warn("role authorization denied",
			"event", "guard_role_denied",
			"module", "identity-access/access-guard",
			"layer", "application",
			"user_id", caller.UserID,
			"role", string(caller.Role),
		)
		return domainerrors.ErrForbidden
	}
	return nil
}

// CheckOwnership loads the resource owner and compares it to the caller.
// Admins pass regardless of ownership.
func (s Service) CheckOwnership(
	ctx context.Context,
	caller ports.Caller,
	resourceType string,
	resourceID string,
) error {
	if !caller.Authenticated() {
		return domainerrors.ErrUnauthenticated
	}
	if !isWellFormedID(resourceID) {
		return domainerrors.ErrInvalidResourceID
	}

	ownerID, err := s.Resources.OwnerOf(ctx, resourceType, resourceID)
	if err != nil {
		return err
	}
	if caller.Role == ports.RoleAdmin || ownerID == caller.UserID {
		return nil
	}

	resolveLogger(s.Logger).Warn("ownership check denied",
		"event", "guard_ownership_denied",
		"module", "identity-access/access-guard",
		"layer", "application",
		"user_id", caller.UserID,
		"resource_type", resourceType,
		"resource_id", resourceID,
	)
	return &domainerrors.OwnershipError{
		ResourceType: resourceType,
		Unowned:      []string{resourceID},
	}
}

// CheckOwnershipBatch verifies every id and reports the full mismatch set.
// Missing resources count as unowned; a malformed id fails the whole batch.
func (s Service) CheckOwnershipBatch(
	ctx context.Context,
	caller ports.Caller,
	resourceType string,
	resourceIDs []string,
) error {
	if !caller.Authenticated() {
		return domainerrors.ErrUnauthenticated
	}
	for _, id := range resourceIDs {
		if !isWellFormedID(id) {
			return domainerrors.ErrInvalidResourceID
		}
	}
	if caller.Role == ports.RoleAdmin {
		return nil
	}

	var unowned []string
	for _, id := range resourceIDs {
		ownerID, err := s.Resources.OwnerOf(ctx, resourceType, id)
		if err != nil {
			if err == domainerrors.ErrNotFound {
				unowned = append(unowned, id)
				continue
			}
			return err
		}
		if ownerID != caller.UserID {
			unowned = append(unowned, id)
		}
	}
	if len(unowned) > 0 {
		return &domainerrors.OwnershipError{
			ResourceType: resourceType,
			Unowned:      unowned,
		}
	}
	return nil
}

// RequireSeller trusts the credential role first and falls back to stored
// account state only when the role is ambiguous. Deactivated accounts are
// always refused. The token-derived shortcut can be stale relative to a
// recent deactivation until the token expires.
func (s Service) RequireSeller(ctx context.Context, caller ports.Caller) error {
	return s.requireCapability(ctx, caller, func(identity ports.Identity) bool {
		return identity.UserType == ports.UserTypeSeller || identity.UserType == ports.UserTypeBoth
	}, ports.RoleSeller)
}

// RequireBuyer mirrors RequireSeller for the buying capability.
func (s Service) RequireBuyer(ctx context.Context, caller ports.Caller) error {
	return s.requireCapability(ctx, caller, func(identity ports.Identity) bool {
		return identity.UserType == ports.UserTypeBuyer || identity.UserType == ports.UserTypeBoth
	}, ports.RoleBuyer)
}

// RequireHypeMode is feature-flag gated per account and always consults the
// store; the flag is never embedded in credentials.
func (s Service) RequireHypeMode(ctx context.Context, caller ports.Caller) error {
	if !caller.Authenticated() {
		return domainerrors.ErrUnauthenticated
	}
	identity, err := s.Identities.FindByID(ctx, caller.UserID)
	if err != nil {
		return err
	}
	if !identity.Active {
		return domainerrors.ErrAccountDeactivated
	}
	if !identity.HypeMode {
		return domainerrors.ErrForbidden
	}
	return nil
}

func (s Service) requireCapability(
	ctx context.Context,
	caller ports.Caller,
	derives func(ports.Identity) bool,
	trustedRole ports.Role,
) error {
	if !caller.Authenticated() {
		return domainerrors.ErrUnauthenticated
	}
	// Credential role is authoritative for the common case; no store hit.
	if caller.Role == trustedRole || caller.Role == ports.RoleAdmin || caller.Role == ports.RoleSubadmin {
		return nil
	}

	identity, err := s.Identities.FindByID(ctx, caller.UserID)
	if err != nil {
		return err
	}
	if !identity.Active {
		return domainerrors.ErrAccountDeactivated
	}
	if !derives(identity) {
		return domainerrors.ErrForbidden
	}
	return nil
}

func isWellFormedID(id string) bool {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" || trimmed != id {
		return false
	}
	_, err := uuid.Parse(trimmed)
	return err == nil
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
