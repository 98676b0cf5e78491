package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"ledgerpass/pkg/platform/httputil"
	"ledgerpass/pkg/platform/secrets"
	"ledgerpass/pkg/requestcontext"
)

// RequireAdminToken guards operator endpoints with the X-Admin-Token header.
// expected may be the plaintext token or its bcrypt hash; an empty expected
// token rejects every request.
func RequireAdminToken(expected string, logger *slog.Logger) func(http.Handler) http.Handler {
	hashed := secrets.IsHash(expected)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !tokenMatches(r.Header.Get("X-Admin-Token"), expected, hashed) {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteUnauthenticated(w, "admin token required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func tokenMatches(got, expected string, hashed bool) bool {
	if expected == "" || got == "" {
		return false
	}
	if hashed {
		return secrets.Verify(got, expected) == nil
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}
