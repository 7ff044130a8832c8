package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/segyhp/loan-engine/internal/domain"
	"github.com/segyhp/loan-engine/pkg/response"
)

type ctxKey string

const (
	ctxCustomerIDKey ctxKey = "customer_id"
	ctxRoleKey       ctxKey = "role"
)

// CustomerID returns the authenticated customer's id from the request context.
func CustomerID(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(ctxCustomerIDKey).(uuid.UUID)
	return v, ok
}

// Role returns the authenticated role from the request context.
func Role(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxRoleKey).(string)
	return v, ok
}

// IsAdmin reports whether the request is authenticated as an admin.
func IsAdmin(ctx context.Context) bool {
	role, ok := Role(ctx)
	return ok && role == domain.RoleAdmin
}

// Middleware authenticates requests with a bearer token.
type Middleware struct {
	tm *TokenManager
}

func NewMiddleware(tm *TokenManager) *Middleware {
	return &Middleware{tm: tm}
}

// Authenticate rejects requests without a valid access token and stores the
// token's identity in the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			response.Unauthorized(w, "missing bearer token")
			return
		}

		claims, err := m.tm.Parse(strings.TrimSpace(header[len("Bearer "):]))
		if err != nil {
			response.Unauthorized(w, "invalid access token")
			return
		}

		customerID, err := uuid.Parse(claims.CustomerID)
		if err != nil {
			response.Unauthorized(w, "invalid access token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxCustomerIDKey, customerID)
		ctx = context.WithValue(ctx, ctxRoleKey, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithIdentity injects an identity into ctx; test helper for handlers.
func WithIdentity(ctx context.Context, customerID uuid.UUID, role string) context.Context {
	ctx = context.WithValue(ctx, ctxCustomerIDKey, customerID)
	return context.WithValue(ctx, ctxRoleKey, role)
}
