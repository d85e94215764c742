package eventlog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Message headers set by JetStreamProducer.
const (
	HeaderKey       = "Order-Key"
	HeaderTimestamp = "Order-Timestamp"
)

// JetStreamProducer appends records to a JetStream stream. Each key gets its own
// subject "<stream>.<key>", which keeps per-key order inside the stream.
type JetStreamProducer struct {
	conn *nats.Conn
	js   jetstream.JetStream
}

// NewJetStreamProducer connects to NATS and makes sure stream exists.
func NewJetStreamProducer(ctx context.Context, url, stream string, opts ...nats.Option) (*JetStreamProducer, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("creating jetstream context: %w", err)
	}

	if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     stream,
		Subjects: []string{stream + ".>"},
		Storage:  jetstream.FileStorage,
	}); err != nil {
		nc.Close()
		return nil, fmt.Errorf("creating stream %s: %w", stream, err)
	}

	return &JetStreamProducer{conn: nc, js: js}, nil
}

// Subject returns the subject a record with key is published on.
func Subject(stream, key string) string {
	return stream + "." + key
}

// Produce publishes rec and waits for the stream's PubAck.
func (p *JetStreamProducer) Produce(ctx context.Context, rec Record) (Ack, error) {
	msg := nats.NewMsg(Subject(rec.Stream, rec.Key))
	msg.Data = rec.Value
	msg.Header.Set(HeaderKey, rec.Key)
	msg.Header.Set(HeaderTimestamp, strconv.FormatInt(rec.Timestamp.UnixMilli(), 10))

	pa, err := p.js.PublishMsg(ctx, msg)
	if err != nil {
		return Ack{}, err
	}

	return Ack{
		Stream:    pa.Stream,
		Position:  strconv.FormatUint(pa.Sequence, 10),
		Timestamp: rec.Timestamp,
	}, nil
}

// Close releases the NATS connection.
func (p *JetStreamProducer) Close() error {
	p.conn.Close()
	return nil
}
