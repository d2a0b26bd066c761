package admin

import (
	"log/slog"
	"net/http"
	"strings"

	dErrors "domainfactor/pkg/domain-errors"
	"domainfactor/pkg/platform/httputil"
	"domainfactor/pkg/requestcontext"
)

// RoleAdmin is the role claim required for settings endpoints.
const RoleAdmin = "admin"

// Claims is what the middleware needs from a validated token.
type Claims struct {
	Subject string
	Role    string
}

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator interface {
	ValidateAdminToken(token string) (*Claims, error)
}

// RequireAdmin rejects requests without a valid bearer token carrying the
// admin role. The token subject is stored as the request actor.
func RequireAdmin(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				logger.WarnContext(ctx, "admin request without bearer token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin token required"))
				return
			}

			claims, err := validator.ValidateAdminToken(strings.TrimSpace(token))
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid admin token",
					"request_id", requestID,
					"error", err,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}
			if claims.Role != RoleAdmin {
				logger.WarnContext(ctx, "forbidden - token lacks admin role",
					"request_id", requestID,
					"subject", claims.Subject,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "admin role required"))
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithActor(ctx, claims.Subject)))
		})
	}
}
