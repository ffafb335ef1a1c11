package errors

import "errors"

var (
	ErrUnauthenticated   = errors.New("credential is absent, malformed, or expired")
	ErrInvalidCredential = errors.New("credential signature, issuer, or audience mismatch")
)
