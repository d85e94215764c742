package eventlog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jnst/order-processor/internal/model"
)

const tracerName = "github.com/jnst/order-processor/internal/eventlog"

// Client appends records through a Producer with a bounded wait for acknowledgment.
type Client struct {
	producer     Producer
	writeTimeout time.Duration
	logger       *slog.Logger
	tracer       trace.Tracer

	mu       sync.RWMutex
	closed   bool
	inflight sync.WaitGroup
}

// NewClient creates a client over producer. Every append waits at most writeTimeout.
func NewClient(producer Producer, writeTimeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		producer:     producer,
		writeTimeout: writeTimeout,
		logger:       logger,
		tracer:       otel.Tracer(tracerName),
	}
}

type produceResult struct {
	ack Ack
	err error
}

// Append publishes one record and blocks until it is acknowledged or the write timeout elapses.
// Any failure wraps model.ErrWriteFailed. Appends are not deduplicated and never retried here.
func (c *Client) Append(ctx context.Context, stream, key string, ts time.Time, payload []byte) (Ack, error) {
	if stream == "" || key == "" {
		return Ack{}, fmt.Errorf("%w: stream and partition key are required", model.ErrWriteFailed)
	}

	if !c.acquire() {
		return Ack{}, fmt.Errorf("%w: %w", model.ErrWriteFailed, ErrClosed)
	}
	defer c.inflight.Done()

	ctx, span := c.tracer.Start(ctx, "eventlog.Append", trace.WithAttributes(
		attribute.String("eventlog.stream", stream),
		attribute.String("eventlog.key", key),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.writeTimeout)
	defer cancel()

	rec := Record{Stream: stream, Key: key, Timestamp: ts, Value: payload}

	// Buffered so the producer goroutine never blocks after a timeout.
	done := make(chan produceResult, 1)
	go func() {
		ack, err := c.producer.Produce(ctx, rec)
		done <- produceResult{ack: ack, err: err}
	}()

	var err error
	select {
	case res := <-done:
		if res.err == nil {
			span.SetAttributes(
				attribute.Int("eventlog.partition", int(res.ack.Partition)),
				attribute.String("eventlog.position", res.ack.Position),
			)
			c.logger.Debug("record acknowledged",
				slog.String("stream", stream),
				slog.String("key", key),
				slog.Int("partition", int(res.ack.Partition)),
				slog.String("position", res.ack.Position),
			)

			return res.ack, nil
		}

		err = fmt.Errorf("%w: append to %s: %w", model.ErrWriteFailed, stream, res.err)
	case <-ctx.Done():
		err = fmt.Errorf("%w: no acknowledgment from %s within %s: %w",
			model.ErrWriteFailed, stream, c.writeTimeout, ctx.Err())
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, "append failed")
	c.logger.Error("failed to append record",
		slog.String("stream", stream),
		slog.String("key", key),
		slog.String("error", err.Error()),
	)

	return Ack{}, err
}

func (c *Client) acquire() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return false
	}

	c.inflight.Add(1)

	return true
}

// Shutdown stops accepting appends, waits up to grace for in-flight appends, then
// closes the producer regardless. It returns ErrShutdownTimeout if the wait was cut short.
func (c *Client) Shutdown(grace time.Duration) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		c.inflight.Wait()
		close(drained)
	}()

	timer := time.NewTimer(grace)
	defer timer.Stop()

	var err error
	select {
	case <-drained:
		c.logger.Info("event log drained")
	case <-timer.C:
		err = ErrShutdownTimeout
		c.logger.Warn("event log grace period expired, closing with appends in flight",
			slog.Duration("grace", grace),
		)
	}

	if closeErr := c.producer.Close(); closeErr != nil {
		err = errors.Join(err, fmt.Errorf("closing producer: %w", closeErr))
	}

	return err
}
