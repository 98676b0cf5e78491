package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"ledgerpass/pkg/requestcontext"
)

// Publisher records audit events. Events are appended synchronously to the
// queryable store and, when forwarding is enabled, handed to a Worker for
// delivery to an external sink after the recording transaction commits.
type Publisher struct {
	store   Store
	forward chan<- Event
	logger  *slog.Logger
}

type PublisherOption func(*Publisher)

// WithForwarding copies every event onto ch. Sends never block; events are
// dropped with a warning when ch is full.
func WithForwarding(ch chan<- Event) PublisherOption {
	return func(p *Publisher) {
		p.forward = ch
	}
}

func WithLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Record assigns the event ID and timestamp and appends it to the store.
// Called inside a registry transaction, a SQL store joins that transaction.
func (p *Publisher) Record(ctx context.Context, event Event) (Event, error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if err := p.store.Append(ctx, event); err != nil {
		return Event{}, err
	}
	return event, nil
}

// Forward hands a recorded event to the worker. It never blocks; the event is
// dropped with a warning when the queue is full.
func (p *Publisher) Forward(ctx context.Context, event Event) {
	if p.forward == nil {
		return
	}
	select {
	case p.forward <- event:
	default:
		p.logger.WarnContext(ctx, "audit forward queue full, dropping event",
			"event_id", event.ID,
			"action", event.Action,
		)
	}
}

func (p *Publisher) List(ctx context.Context, subject string) ([]Event, error) {
	return p.store.ListBySubject(ctx, subject)
}
