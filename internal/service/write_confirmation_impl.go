package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jnst/order-processor/internal/repository"
)

// WriteConfirmationImpl polls the order view at a fixed interval.
type WriteConfirmationImpl struct {
	views        repository.OrderViewRepository
	pollInterval time.Duration
	logger       *slog.Logger
	tracer       trace.Tracer
}

// NewWriteConfirmationImpl creates a new WriteConfirmation polling views every pollInterval.
func NewWriteConfirmationImpl(
	views repository.OrderViewRepository,
	pollInterval time.Duration,
	logger *slog.Logger,
) *WriteConfirmationImpl {
	return &WriteConfirmationImpl{
		views:        views,
		pollInterval: pollInterval,
		logger:       logger,
		tracer:       newTracer(),
	}
}

// AwaitVisible reports whether the view entry for orderID carries eventID before deadline.
// A view for the same order with another event id counts as not yet visible.
// Expiry is not an error; it returns false.
func (c *WriteConfirmationImpl) AwaitVisible(ctx context.Context, eventID, orderID uuid.UUID, deadline time.Duration) bool {
	ctx, span := c.tracer.Start(ctx, "WriteConfirmation.AwaitVisible", trace.WithAttributes(
		attribute.String("order.id", orderID.String()),
		attribute.String("order.event_id", eventID.String()),
	))
	defer span.End()

	start := time.Now()
	ctx, cancel := context.WithDeadline(ctx, start.Add(deadline))
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	attempts := 0
	expired := func() bool {
		span.SetAttributes(attribute.Int("poll.attempts", attempts), attribute.Bool("poll.found", false))
		c.logger.Debug("write not visible before deadline",
			slog.String("order_id", orderID.String()),
			slog.String("event_id", eventID.String()),
			slog.Int("attempts", attempts),
			slog.Duration("elapsed", time.Since(start)),
		)

		return false
	}

	for {
		select {
		case <-ctx.Done():
			return expired()
		case <-ticker.C:
		}

		// Both channels may be ready at once; the deadline wins.
		if ctx.Err() != nil {
			return expired()
		}

		attempts++

		view, err := c.views.Lookup(ctx, orderID)
		if err != nil {
			c.logger.Debug("order view lookup failed",
				slog.String("order_id", orderID.String()),
				slog.String("error", err.Error()),
			)

			continue
		}

		if view != nil && view.ID == eventID {
			span.SetAttributes(attribute.Int("poll.attempts", attempts), attribute.Bool("poll.found", true))
			c.logger.Debug("write visible",
				slog.String("order_id", orderID.String()),
				slog.Int("attempts", attempts),
				slog.Duration("elapsed", time.Since(start)),
			)

			return true
		}
	}
}
