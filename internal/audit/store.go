package audit

import "context"

// Sink receives events for persistence or forwarding.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Store is a Sink that can also be queried by subject.
type Store interface {
	Sink
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
}
