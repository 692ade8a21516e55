// Package auth resolves the caller's identity for protected routes.
package auth

import (
	"context"
	"net/http"
	"strings"

	"storefront-service/internal/apperr"
)

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Gateway headers read by HeaderProvider
const (
	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"
)

// Identity is an authenticated caller
type Identity struct {
	UserID string
	Role   string
}

// IsAdmin reports whether the caller has the admin role
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Provider authenticates an inbound request
type Provider interface {
	Authenticate(ctx context.Context, r *http.Request) (*Identity, error)
}

// Authorize fails with Forbidden unless the identity has one of roles
func Authorize(id *Identity, roles ...string) error {
	for _, role := range roles {
		if id.Role == role {
			return nil
		}
	}
	return apperr.Forbidden("User role " + id.Role + " is not authorized to access this route")
}

// HeaderProvider trusts identity headers set by an upstream gateway
type HeaderProvider struct{}

func NewHeaderProvider() *HeaderProvider {
	return &HeaderProvider{}
}

func (p *HeaderProvider) Authenticate(_ context.Context, r *http.Request) (*Identity, error) {
	userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if userID == "" {
		return nil, apperr.Unauthenticated("Not authorized to access this route")
	}

	role := strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderUserRole)))
	if role == "" {
		role = RoleUser
	}
	return &Identity{UserID: userID, Role: role}, nil
}
