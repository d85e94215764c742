package eventlog

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/redis/rueidis/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRedisStreamProducer_ProduceAddsToKeyPartition(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock.NewClient(ctrl)

	ts := time.UnixMilli(1_700_000_000_456)
	key := "3f1c9a2e-6f0e-4a51-9d7a-8a3f3c1d2b10"
	partition := Partition(key, 8)
	streamKey := PartitionStream("order-commands", partition)

	client.EXPECT().
		Do(gomock.Any(), mock.Match(
			"XADD", streamKey, "*",
			FieldKey, key,
			FieldTimestamp, strconv.FormatInt(ts.UnixMilli(), 10),
			FieldValue, `{"id":"e1"}`,
		)).
		Return(mock.Result(mock.RedisString("1700000000456-0")))

	p := NewRedisStreamProducer(client, 8)
	ack, err := p.Produce(context.Background(), Record{
		Stream:    "order-commands",
		Key:       key,
		Timestamp: ts,
		Value:     []byte(`{"id":"e1"}`),
	})
	require.NoError(t, err)

	assert.Equal(t, streamKey, ack.Stream)
	assert.Equal(t, partition, ack.Partition)
	assert.Equal(t, "1700000000456-0", ack.Position)
}

func TestRedisStreamProducer_ProduceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock.NewClient(ctrl)

	boom := errors.New("READONLY You can't write against a read only replica")
	client.EXPECT().Do(gomock.Any(), gomock.Any()).Return(mock.ErrorResult(boom))

	p := NewRedisStreamProducer(client, 1)
	_, err := p.Produce(context.Background(), Record{Stream: "s", Key: "k", Timestamp: time.Now()})
	assert.ErrorIs(t, err, boom)
}
