// Package requestcontext holds the request-scoped values that middleware
// attaches and that handlers, the ledger and the audit publisher read back
// without depending on net/http.
package requestcontext

import (
	"context"
	"time"

	"ledgerpass/pkg/domain"
)

type (
	principalKey struct{}
	requestIDKey struct{}
	timeKey      struct{}
)

// Principal is the authenticated transaction sender, or "" when anonymous.
func Principal(ctx context.Context) domain.Principal {
	p, _ := ctx.Value(principalKey{}).(domain.Principal)
	return p
}

func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// Now is the time the request arrived. Contexts that did not come through
// the HTTP stack, such as the block producer, get the wall clock.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(timeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, timeKey{}, t)
}
