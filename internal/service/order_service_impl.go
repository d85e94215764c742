package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jnst/order-processor/internal/model"
	"github.com/jnst/order-processor/internal/repository"
)

// OrderServiceOptions configures OrderServiceImpl.
type OrderServiceOptions struct {
	// Stream is the command log stream orders are appended to.
	Stream string
	// VisibilityDeadline bounds the wait for the order view.
	VisibilityDeadline time.Duration
	// StrictVisibility makes a visibility timeout an error instead of an accepted receipt.
	StrictVisibility bool
}

// OrderServiceImpl implements OrderService on top of the command log and the order view.
type OrderServiceImpl struct {
	events   EventAppender
	confirm  WriteConfirmation
	views    repository.OrderViewRepository
	opts     OrderServiceOptions
	logger   *slog.Logger
	tracer   trace.Tracer
	clockNow func() time.Time
}

// NewOrderServiceImpl creates a new OrderService implementation.
func NewOrderServiceImpl(
	events EventAppender,
	confirm WriteConfirmation,
	views repository.OrderViewRepository,
	opts OrderServiceOptions,
	logger *slog.Logger,
) OrderService {
	return &OrderServiceImpl{
		events:   events,
		confirm:  confirm,
		views:    views,
		opts:     opts,
		logger:   logger,
		tracer:   newTracer(),
		clockNow: time.Now,
	}
}

// PlaceOrder appends an OrderPlaced event and waits for the order view to show it.
//
// A failed append returns an error wrapping model.ErrWriteFailed and no receipt.
// When the view does not show the write before the deadline the receipt has status
// accepted; under StrictVisibility the receipt is returned together with an error
// wrapping model.ErrVisibilityTimeout.
func (s *OrderServiceImpl) PlaceOrder(ctx context.Context, params *model.PlaceOrderParams) (*model.OrderReceipt, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "OrderService.PlaceOrder")
	defer span.End()

	event := model.NewOrderPlacedEvent(params.CustomerID, params.Item, s.clockNow())
	span.SetAttributes(
		attribute.String("order.id", event.OrderID.String()),
		attribute.String("order.event_id", event.ID.String()),
	)

	if err := s.appendEvent(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "append failed")

		return nil, err
	}

	if s.confirm.AwaitVisible(ctx, event.ID, event.OrderID, s.opts.VisibilityDeadline) {
		s.logger.Info("order placed",
			slog.String("order_id", event.OrderID.String()),
			slog.String("event_id", event.ID.String()),
			slog.String("status", string(model.ReceiptStatusConfirmed)),
		)

		return event.Receipt(model.ReceiptStatusConfirmed), nil
	}

	receipt := event.Receipt(model.ReceiptStatusAccepted)
	s.logger.Warn("order accepted but not visible in view before deadline",
		slog.String("order_id", event.OrderID.String()),
		slog.String("event_id", event.ID.String()),
		slog.Duration("deadline", s.opts.VisibilityDeadline),
	)

	if s.opts.StrictVisibility {
		err := fmt.Errorf("%w: order %s after %s", model.ErrVisibilityTimeout, event.OrderID, s.opts.VisibilityDeadline)
		span.RecordError(err)
		span.SetStatus(codes.Error, "visibility timeout")

		return receipt, err
	}

	return receipt, nil
}

// GetOrder retrieves an order from the view.
func (s *OrderServiceImpl) GetOrder(ctx context.Context, orderID uuid.UUID) (*model.OrderView, error) {
	view, err := s.views.Lookup(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if view == nil {
		return nil, fmt.Errorf("%w: %s", model.ErrOrderNotFound, orderID)
	}

	return view, nil
}

// ListOrders retrieves all orders from the view.
func (s *OrderServiceImpl) ListOrders(ctx context.Context) ([]*model.OrderView, error) {
	return s.views.ListAll(ctx)
}

func (s *OrderServiceImpl) appendEvent(ctx context.Context, event *model.OrderPlacedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	// Keyed by order id so every event of one order lands on one partition.
	ack, err := s.events.Append(ctx, s.opts.Stream, event.PartitionKey(), event.CreatedAt, payload)
	if err != nil {
		if !errors.Is(err, model.ErrWriteFailed) {
			err = fmt.Errorf("%w: %w", model.ErrWriteFailed, err)
		}

		return fmt.Errorf("failed to append order event: %w", err)
	}

	s.logger.Debug("order event appended",
		slog.String("order_id", event.OrderID.String()),
		slog.String("stream", ack.Stream),
		slog.Int("partition", int(ack.Partition)),
		slog.String("position", ack.Position),
	)

	return nil
}
