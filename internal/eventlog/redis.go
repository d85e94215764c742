package eventlog

import (
	"context"
	"strconv"

	"github.com/redis/rueidis"
)

// Stream entry field names written by RedisStreamProducer.
const (
	FieldKey       = "key"
	FieldTimestamp = "ts"
	FieldValue     = "value"
)

// RedisStreamProducer emulates a partitioned log on Redis Streams: each partition is a
// separate stream named "<stream>:<partition>", and keys are spread with Partition.
type RedisStreamProducer struct {
	client     rueidis.Client
	partitions int
}

// NewRedisStreamProducer creates a producer writing across partitions streams.
func NewRedisStreamProducer(client rueidis.Client, partitions int) *RedisStreamProducer {
	return &RedisStreamProducer{
		client:     client,
		partitions: partitions,
	}
}

// Produce appends rec with XADD. Redis replies with the entry id once the write is applied.
func (p *RedisStreamProducer) Produce(ctx context.Context, rec Record) (Ack, error) {
	partition := Partition(rec.Key, p.partitions)
	streamKey := PartitionStream(rec.Stream, partition)

	cmd := p.client.B().Xadd().Key(streamKey).Id("*").
		FieldValue().FieldValue(FieldKey, rec.Key).
		FieldValue(FieldTimestamp, strconv.FormatInt(rec.Timestamp.UnixMilli(), 10)).
		FieldValue(FieldValue, string(rec.Value)).
		Build()

	id, err := p.client.Do(ctx, cmd).ToString()
	if err != nil {
		return Ack{}, err
	}

	return Ack{
		Stream:    streamKey,
		Partition: partition,
		Position:  id,
		Timestamp: rec.Timestamp,
	}, nil
}

// Close releases the Redis connections.
func (p *RedisStreamProducer) Close() error {
	p.client.Close()
	return nil
}
