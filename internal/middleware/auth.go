package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"
	"github.com/mmynk/paygate/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// OperatorKey is the context key for storing the authenticated operator.
	OperatorKey contextKey = "operator"
	// RoleKey is the context key for storing the operator's role.
	RoleKey contextKey = "role"
)

// GetOperator extracts the operator from the context.
// Returns empty string if not found.
func GetOperator(ctx context.Context) string {
	operator, _ := ctx.Value(OperatorKey).(string)
	return operator
}

// GetRole extracts the operator role from the context.
// Returns empty string if not found.
func GetRole(ctx context.Context) string {
	role, _ := ctx.Value(RoleKey).(string)
	return role
}

// RequireRole returns an interceptor that demands a valid operator token with
// role on the listed procedures. Other procedures pass through untouched,
// though a valid token on them still populates the context.
func RequireRole(jwtManager *auth.JWTManager, role string, procedures ...string) connect.UnaryInterceptorFunc {
	guarded := make(map[string]bool, len(procedures))
	for _, p := range procedures {
		guarded[p] = true
	}

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			mustAuth := guarded[req.Spec().Procedure]

			claims, err := bearerClaims(jwtManager, req.Header().Get("Authorization"))
			if err != nil {
				if mustAuth {
					return nil, connect.NewError(connect.CodeUnauthenticated, err)
				}
				return next(ctx, req)
			}

			if mustAuth && claims.Role != role {
				return nil, connect.NewError(connect.CodePermissionDenied, auth.ErrForbidden)
			}

			// Add operator info to context
			ctx = context.WithValue(ctx, OperatorKey, claims.Operator())
			ctx = context.WithValue(ctx, RoleKey, claims.Role)

			return next(ctx, req)
		}
	}
}

// bearerClaims validates a "Bearer <token>" header value.
func bearerClaims(jwtManager *auth.JWTManager, header string) (*auth.Claims, error) {
	if header == "" {
		return nil, auth.ErrMissingToken
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, auth.ErrInvalidToken
	}

	return jwtManager.Validate(parts[1])
}
