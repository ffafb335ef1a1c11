package ports

import "time"

// AuthContext is the resolved caller identity threaded through guard chains
// and handlers. Anonymous contexts have an empty UserID.
type AuthContext struct {
	UserID    string
	Role      string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Anonymous bool
}

func Anonymous() AuthContext {
	return AuthContext{Anonymous: true}
}

func (c AuthContext) Authenticated() bool {
	return !c.Anonymous && c.UserID != ""
}

type Clock interface {
	Now() time.Time
}
