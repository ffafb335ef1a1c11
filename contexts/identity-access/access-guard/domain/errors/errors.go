package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnauthenticated    = errors.New("caller identity is required")
	ErrForbidden          = errors.New("caller role or capability is insufficient")
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidResourceID  = errors.New("resource id is not a well-formed identifier")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrUnknownResource    = errors.New("resource type is not registered")
)

// OwnershipError reports every resource id the caller does not own.
// Batch checks collect the full mismatch set instead of failing fast.
type OwnershipError struct {
	ResourceType string
	Unowned      []string
}

func (e *OwnershipError) Error() string {
	return fmt.Sprintf("caller does not own %s resources: %s",
		e.ResourceType, strings.Join(e.Unowned, ", "))
}

func (e *OwnershipError) Unwrap() error {
	return ErrForbidden
}
