package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jnst/order-processor/internal/eventlog"
	"github.com/jnst/order-processor/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memoryViews is an in-memory order view with a lookup counter and injectable errors.
type memoryViews struct {
	mu      sync.Mutex
	views   map[uuid.UUID]*model.OrderView
	lookups atomic.Int64
	failN   atomic.Int64
}

func newMemoryViews() *memoryViews {
	return &memoryViews{views: make(map[uuid.UUID]*model.OrderView)}
}

func (m *memoryViews) Lookup(_ context.Context, orderID uuid.UUID) (*model.OrderView, error) {
	m.lookups.Add(1)
	if m.failN.Load() > 0 {
		m.failN.Add(-1)
		return nil, errLookup
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.views[orderID]
	if !ok {
		return nil, nil
	}
	cp := *v

	return &cp, nil
}

func (m *memoryViews) ListAll(context.Context) ([]*model.OrderView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*model.OrderView, 0, len(m.views))
	for _, v := range m.views {
		cp := *v
		out = append(out, &cp)
	}

	return out, nil
}

func (m *memoryViews) Upsert(_ context.Context, view *model.OrderView) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *view
	m.views[view.OrderID] = &cp

	return nil
}

func (m *memoryViews) publishAfter(delay time.Duration, view *model.OrderView) {
	time.AfterFunc(delay, func() { _ = m.Upsert(context.Background(), view) })
}

var errLookup = errors.New("view store unavailable")

// projectingAppender records appends and, when views is set, projects each event
// into the view after delay, standing in for the external view builder.
type projectingAppender struct {
	mu      sync.Mutex
	records []eventlog.Record
	views   *memoryViews
	delay   time.Duration
}

func (a *projectingAppender) Append(_ context.Context, stream, key string, ts time.Time, payload []byte) (eventlog.Ack, error) {
	a.mu.Lock()
	a.records = append(a.records, eventlog.Record{Stream: stream, Key: key, Timestamp: ts, Value: payload})
	a.mu.Unlock()

	if a.views != nil {
		var event model.OrderPlacedEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return eventlog.Ack{}, err
		}
		a.views.publishAfter(a.delay, event.View())
	}

	return eventlog.Ack{Stream: stream, Timestamp: ts}, nil
}

func (a *projectingAppender) Records() []eventlog.Record {
	a.mu.Lock()
	defer a.mu.Unlock()

	return append([]eventlog.Record(nil), a.records...)
}

// blockingProducer never acknowledges until released.
type blockingProducer struct {
	release chan struct{}
}

func (p *blockingProducer) Produce(ctx context.Context, _ eventlog.Record) (eventlog.Ack, error) {
	select {
	case <-p.release:
	case <-ctx.Done():
	}

	return eventlog.Ack{}, ctx.Err()
}

func (p *blockingProducer) Close() error { return nil }

var errBroker = errors.New("broker unavailable")

type failingAppender struct{}

func (failingAppender) Append(context.Context, string, string, time.Time, []byte) (eventlog.Ack, error) {
	return eventlog.Ack{}, errBroker
}
