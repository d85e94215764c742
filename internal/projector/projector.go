// Package projector is a development view builder: it consumes the Redis Streams
// partitions of the order command stream and keeps the Redis order view current.
// Production deployments run their own stream processor instead.
package projector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/jnst/order-processor/internal/eventlog"
	"github.com/jnst/order-processor/internal/model"
	"github.com/jnst/order-processor/internal/repository"
)

const (
	readCount       = 64
	blockTimeout    = time.Second
	errorRetryDelay = time.Second
)

// Config names the stream and consumer group a Projector reads.
type Config struct {
	Stream     string
	Partitions int
	Group      string
	Consumer   string
}

// ErrMalformedEntry marks a stream entry that can never be applied.
var ErrMalformedEntry = errors.New("malformed order event entry")

// Projector applies OrderPlaced events to the order view.
//
// Malformed entries are logged and acknowledged. Entries whose view write fails
// stay pending and are read again from the consumer's pending list.
type Projector struct {
	client rueidis.Client
	views  repository.OrderViewWriter
	cfg    Config
	logger *slog.Logger

	// recovering is set while this consumer's pending entries are being replayed.
	recovering bool
}

// New creates a projector reading through client and writing to views.
func New(client rueidis.Client, views repository.OrderViewWriter, cfg Config, logger *slog.Logger) *Projector {
	return &Projector{
		client:     client,
		views:      views,
		cfg:        cfg,
		logger:     logger,
		recovering: true,
	}
}

func (p *Projector) streamKeys() []string {
	keys := make([]string, p.cfg.Partitions)
	for i := range keys {
		keys[i] = eventlog.PartitionStream(p.cfg.Stream, int32(i))
	}

	return keys
}

// EnsureGroups creates the consumer group on every partition stream.
func (p *Projector) EnsureGroups(ctx context.Context) error {
	for _, key := range p.streamKeys() {
		cmd := p.client.B().XgroupCreate().Key(key).Group(p.cfg.Group).Id("0").Mkstream().Build()
		err := p.client.Do(ctx, cmd).Error()
		if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
			return fmt.Errorf("creating consumer group on %s: %w", key, err)
		}
	}

	return nil
}

// Run consumes until ctx is cancelled.
func (p *Projector) Run(ctx context.Context) {
	p.logger.Info("projector started",
		slog.String("stream", p.cfg.Stream),
		slog.Int("partitions", p.cfg.Partitions),
		slog.String("group", p.cfg.Group),
		slog.String("consumer", p.cfg.Consumer),
	)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("projector stopped")
			return
		default:
		}

		if err := p.consumeOnce(ctx); err != nil && ctx.Err() == nil {
			p.logger.Error("error consuming order events", slog.String("error", err.Error()))
			time.Sleep(errorRetryDelay)
		}
	}
}

func (p *Projector) consumeOnce(ctx context.Context) error {
	keys := p.streamKeys()

	// "0" replays entries delivered to this consumer but never acknowledged;
	// Redis answers it without blocking.
	id := ">"
	if p.recovering {
		id = "0"
	}
	ids := make([]string, len(keys))
	for i := range ids {
		ids[i] = id
	}

	cmd := p.client.B().Xreadgroup().Group(p.cfg.Group, p.cfg.Consumer).
		Count(readCount).
		Block(blockTimeout.Milliseconds()).
		Streams().
		Key(keys...).
		Id(ids...).
		Build()

	streams, err := p.client.Do(ctx, cmd).AsXRead()
	if rueidis.IsRedisNil(err) {
		p.recovering = false
		return nil
	}
	if err != nil {
		return err
	}

	read := 0
	var errs []error
	for key, entries := range streams {
		read += len(entries)
		if err := p.processEntries(ctx, key, entries); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		p.recovering = true
		return errors.Join(errs...)
	}
	if p.recovering && read == 0 {
		p.recovering = false
		p.logger.Debug("pending order events replayed")
	}

	return nil
}

// processEntries applies entries in order and acknowledges the applied and the malformed
// ones. It stops at the first failed view write so later entries keep their order.
func (p *Projector) processEntries(ctx context.Context, key string, entries []rueidis.XRangeEntry) error {
	for _, entry := range entries {
		if err := p.Apply(ctx, entry.FieldValues); err != nil {
			if !errors.Is(err, ErrMalformedEntry) {
				return fmt.Errorf("projecting %s on %s: %w", entry.ID, key, err)
			}

			p.logger.Error("dropping malformed order event",
				slog.String("stream", key),
				slog.String("entry_id", entry.ID),
				slog.String("error", err.Error()),
			)
		}

		ack := p.client.B().Xack().Key(key).Group(p.cfg.Group).Id(entry.ID).Build()
		if err := p.client.Do(ctx, ack).Error(); err != nil {
			p.logger.Error("failed to ACK order event",
				slog.String("entry_id", entry.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return nil
}

// Apply decodes one stream entry and upserts the resulting view.
func (p *Projector) Apply(ctx context.Context, fields map[string]string) error {
	payload, ok := fields[eventlog.FieldValue]
	if !ok {
		return fmt.Errorf("%w: missing value field", ErrMalformedEntry)
	}

	var event model.OrderPlacedEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedEntry, err)
	}

	if err := p.views.Upsert(ctx, event.View()); err != nil {
		return err
	}

	p.logger.Debug("order view updated",
		slog.String("order_id", event.OrderID.String()),
		slog.String("event_id", event.ID.String()),
	)

	return nil
}
