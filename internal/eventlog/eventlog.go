// Package eventlog appends keyed, timestamped records to a partitioned command log
// and reports the backend's acknowledgment.
//
// The Client owns the shared backend connection: it bounds every append by a write
// timeout and drains in-flight appends on Shutdown. Backends implement Producer.
package eventlog

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrClosed is returned by Append once Shutdown has started.
	ErrClosed = errors.New("event log client is closed")
	// ErrShutdownTimeout is returned by Shutdown when appends were still in flight at the end of the grace period.
	ErrShutdownTimeout = errors.New("event log shutdown grace period expired")
)

// Record is a single log entry.
type Record struct {
	Stream    string
	Key       string
	Timestamp time.Time
	Value     []byte
}

// Ack describes where the backend stored a record.
// Position is the backend's native offset, sequence, or entry id.
type Ack struct {
	Stream    string
	Partition int32
	Position  string
	Timestamp time.Time
}

// Producer is a log backend. Produce blocks until the backend acknowledges the record.
// Implementations must be safe for concurrent use.
type Producer interface {
	Produce(ctx context.Context, rec Record) (Ack, error)
	Close() error
}
