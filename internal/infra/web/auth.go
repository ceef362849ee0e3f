package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"kundli-ai-payments/internal/domain"
	"kundli-ai-payments/internal/domain/ports/adapter"
)

// ===== Session/JWT primitives =====

type AuthManager struct {
	secret []byte
	ttl    time.Duration
}

func NewAuthManager(secret string, ttl time.Duration) *AuthManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthManager{secret: []byte(secret), ttl: ttl}
}

// UserClaims carries the contact fields the checkout prefill needs, so a
// purchase never goes back to the auth provider mid-flow.
type UserClaims struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	jwt.RegisteredClaims
}

// Mint issues a signed token for the user. Used by the dev login endpoint
// and by tests; production tokens come from the auth provider with the same
// shape and secret.
func (a *AuthManager) Mint(u adapter.User) (string, error) {
	now := time.Now()
	claims := UserClaims{
		Email: u.Email,
		Phone: u.Phone,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *AuthManager) ParseFromRequest(r *http.Request) (*UserClaims, error) {
	hdr := r.Header.Get("Authorization")
	if hdr == "" || !strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
		return nil, errors.New("missing token")
	}
	return a.parse(strings.TrimSpace(hdr[7:]))
}

func (a *AuthManager) parse(tok string) (*UserClaims, error) {
	claims := &UserClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// ===== Request identity =====

type ctxUserKey struct{}

// UserFromContext returns the authenticated user attached by authMiddleware.
func UserFromContext(ctx context.Context) (*adapter.User, bool) {
	u, ok := ctx.Value(ctxUserKey{}).(*adapter.User)
	return u, ok
}

func withUser(ctx context.Context, u *adapter.User) context.Context {
	return context.WithValue(ctx, ctxUserKey{}, u)
}

var _ adapter.Identity = (*ContextIdentity)(nil)

// ContextIdentity resolves the current user from the request context, which
// is how the purchase flow sees "who is signed in" inside an HTTP request.
type ContextIdentity struct{}

func (ContextIdentity) CurrentUser(ctx context.Context) (*adapter.User, error) {
	u, ok := UserFromContext(ctx)
	if !ok || u == nil {
		return nil, domain.ErrAuthRequired
	}
	return u, nil
}
