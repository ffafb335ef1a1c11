package ports

import (
	"context"
	"time"
)

type Role string

const (
	RoleUser     Role = "user"
	RoleBuyer    Role = "buyer"
	RoleSeller   Role = "seller"
	RoleSubadmin Role = "subadmin"
	RoleAdmin    Role = "admin"
)

type UserType string

const (
	UserTypeBuyer  UserType = "buyer"
	UserTypeSeller UserType = "seller"
	UserTypeBoth   UserType = "both"
)

// Caller is the guard's view of the authenticated request principal.
// The transport layer maps its resolved auth context into this shape.
type Caller struct {
	UserID string
	Role   Role
}

func (c Caller) Authenticated() bool {
	return c.UserID != ""
}

// Identity is the stored account state consulted when the credential role
// is not enough to decide a capability.
type Identity struct {
	UserID   string
	Role     Role
	UserType UserType
	HypeMode bool
	Active   bool
}

type IdentityStore interface {
	FindByID(ctx context.Context, userID string) (Identity, error)
}

// ResourceDirectory resolves the owner of a typed resource. Each domain
// store is registered under its resource type at wiring time.
type ResourceDirectory interface {
	OwnerOf(ctx context.Context, resourceType string, resourceID string) (string, error)
}

type Clock interface {
	Now() time.Time
}
