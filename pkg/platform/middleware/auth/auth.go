package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"ledgerpass/pkg/domain"
	"ledgerpass/pkg/platform/httputil"
	"ledgerpass/pkg/requestcontext"
)

// JWTValidator turns a bearer token into the claims of its sender.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

type JWTClaims struct {
	Principal domain.Principal
	JTI       string
}

// RequireAuth binds the bearer token's principal as the transaction sender.
// Requests without a valid token never reach next.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			reject := func(reason, description string, attrs ...any) {
				logger.WarnContext(ctx, "rejected bearer token",
					append([]any{"reason", reason, "request_id", requestcontext.RequestID(ctx)}, attrs...)...,
				)
				httputil.WriteUnauthenticated(w, description)
			}

			scheme, token, _ := strings.Cut(r.Header.Get("Authorization"), " ")
			if !strings.EqualFold(scheme, "Bearer") || token == "" {
				reject("missing", "Missing or invalid Authorization header")
				return
			}
			claims, err := validator.ValidateToken(token)
			if err != nil {
				reject("invalid", "Invalid or expired token", "error", err)
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithPrincipal(ctx, claims.Principal)))
		})
	}
}
