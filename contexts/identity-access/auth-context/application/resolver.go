package application

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	domainerrors "bazaar/contexts/identity-access/auth-context/domain/errors"
	"bazaar/contexts/identity-access/auth-context/ports"

	"github.com/golang-jwt/jwt/v5"
)

// Resolver verifies bearer credentials and produces an AuthContext.
// Signature, issuer, audience, and expiry are all checked against the
// configured values; nothing is trusted from the token before that.
type Resolver struct {
	Secret   []byte
	Issuer   string
	Audience string
	Clock    ports.Clock
	Logger   *slog.Logger
}

type bearerClaims struct {
	jwt.RegisteredClaims
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
}

// Resolve parses an Authorization header value ("Bearer <token>" or the raw
// token) into an AuthContext.
func (r Resolver) Resolve(authorization string) (ports.AuthContext, error) {
	token, err := extractBearer(authorization)
	if err != nil {
		return ports.AuthContext{}, err
	}

	claims := &bearerClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return r.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(r.Issuer),
		jwt.WithAudience(r.Audience),
		jwt.WithTimeFunc(r.now),
	)
	if err != nil {
		return ports.AuthContext{}, classifyParseError(err)
	}
	if !parsed.Valid {
		return ports.AuthContext{}, domainerrors.ErrInvalidCredential
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return ports.AuthContext{}, domainerrors.ErrUnauthenticated
	}

	authCtx := ports.AuthContext{
		UserID: subject,
		Role:   strings.TrimSpace(claims.Role),
		Email:  strings.TrimSpace(claims.Email),
	}
	if claims.IssuedAt != nil {
		authCtx.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	if claims.ExpiresAt != nil {
		authCtx.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return authCtx, nil
}

// ResolveOptional never fails: any resolution problem yields an anonymous
// context so endpoints can branch on caller identity.
func (r Resolver) ResolveOptional(authorization string) ports.AuthContext {
	authCtx, err := r.Resolve(authorization)
	if err != nil {
		return ports.Anonymous()
	}
	return authCtx
}

// Issue mints a signed credential for the given identity. Used by the
// session surface and by tests that need real tokens.
func (r Resolver) Issue(userID string, role string, email string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", domainerrors.ErrUnauthenticated
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := r.now()
	claims := bearerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    r.Issuer,
			Audience:  jwt.ClaimStrings{r.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role:  role,
		Email: email,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.Secret)
}

func (r Resolver) now() time.Time {
	if r.Clock == nil {
		return time.Now().UTC()
	}
	return r.Clock.Now().UTC()
}

func extractBearer(authorization string) (string, error) {
	value := strings.TrimSpace(authorization)
	if value == "" {
		return "", domainerrors.ErrUnauthenticated
	}
	parts := strings.SplitN(value, " ", 2)
	if len(parts) == 2 {
		if !strings.EqualFold(parts[0], "bearer") {
			return "", domainerrors.ErrUnauthenticated
		}
		value = strings.TrimSpace(parts[1])
	}
	if value == "" {
		return "", domainerrors.ErrUnauthenticated
	}
	return value, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenInvalidAudience):
		return domainerrors.ErrInvalidCredential
	default:
		// Malformed, expired, not yet valid, and anything unrecognized.
		return domainerrors.ErrUnauthenticated
	}
}
