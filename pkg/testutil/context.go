package testutil

import (
	"net/http"

	"ledgerpass/pkg/domain"
	"ledgerpass/pkg/requestcontext"
)

// WithPrincipal binds an authenticated sender to req the way the bearer
// middleware does, for tests that call a handler directly. An unparsable
// principal leaves req anonymous.
func WithPrincipal(req *http.Request, principal string) *http.Request {
	parsed, err := domain.ParsePrincipal(principal)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithPrincipal(req.Context(), parsed))
}
