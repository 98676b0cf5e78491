package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ledgerpass/internal/audit"
	"ledgerpass/internal/registry/models"
	"ledgerpass/pkg/domain"
	dErrors "ledgerpass/pkg/domain-errors"
	"ledgerpass/pkg/requestcontext"
)

func (s *Service) startSpan(ctx context.Context, operation string, inv models.Invocation) (context.Context, trace.Span) {
	return tracer.Start(ctx, "registry."+operation, trace.WithAttributes(
		attribute.String("registry.sender", inv.Sender.String()),
		attribute.Int64("registry.height", int64(inv.Height)),
	))
}

// finish closes out a mutation: span status, metrics and a log line.
func (s *Service) finish(ctx context.Context, span trace.Span, operation string, inv models.Invocation, start time.Time, err error) {
	defer span.End()

	outcome := "ok"
	if err != nil {
		code := dErrors.CodeOf(err)
		outcome = string(code)
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		if code == dErrors.CodeInternal {
			s.logger.ErrorContext(ctx, "registry operation failed",
				"operation", operation,
				"sender", inv.Sender,
				"height", inv.Height,
				"error", err,
			)
		} else {
			s.logger.DebugContext(ctx, "registry operation rejected",
				"operation", operation,
				"sender", inv.Sender,
				"height", inv.Height,
				"code", outcome,
			)
		}
	}
	if s.metrics != nil {
		s.metrics.ObserveOperation(operation, outcome, start)
	}
}

// recordAudit appends the history event for a mutation. It runs inside the
// registry transaction: a failed append fails the transaction.
func (s *Service) recordAudit(ctx context.Context, inv models.Invocation, action audit.Action, subject, detail string) (audit.Event, error) {
	event := audit.Event{
		Height:    inv.Height,
		Actor:     inv.Sender,
		Subject:   subject,
		Action:    action,
		Detail:    detail,
		RequestID: requestcontext.RequestID(ctx),
	}
	if s.auditPublisher == nil {
		return event, nil
	}
	recorded, err := s.auditPublisher.Record(ctx, event)
	if err != nil {
		return audit.Event{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
	}
	return recorded, nil
}

// publishAudit logs and forwards an event once its transaction committed.
func (s *Service) publishAudit(ctx context.Context, event audit.Event) {
	s.logger.InfoContext(ctx, string(event.Action),
		"event", event.Action,
		"log_type", "audit",
		"actor", event.Actor,
		"subject", event.Subject,
		"height", event.Height,
		"request_id", event.RequestID,
	)
	if s.auditPublisher != nil {
		s.auditPublisher.Forward(ctx, event)
	}
}

func authoritySubject(principal domain.Principal) string {
	return "authority:" + principal.String()
}

func passportSubject(number domain.PassportNumber) string {
	return "passport:" + number.String()
}
