package eventlog

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"
)

// KafkaProducer appends records to a Kafka topic through a sarama SyncProducer.
// The record key drives the hash partitioner, so one key always maps to one partition.
type KafkaProducer struct {
	producer sarama.SyncProducer
}

// NewKafkaConfig returns producer settings that wait for all in-sync replicas.
func NewKafkaConfig(writeTimeout time.Duration) *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Partitioner = sarama.NewHashPartitioner
	cfg.Producer.Timeout = writeTimeout

	return cfg
}

// NewKafkaProducer connects a SyncProducer to brokers.
func NewKafkaProducer(brokers []string, cfg *sarama.Config) (*KafkaProducer, error) {
	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to kafka at %v: %w", brokers, err)
	}

	return NewKafkaProducerFrom(producer), nil
}

// NewKafkaProducerFrom wraps an existing SyncProducer.
func NewKafkaProducerFrom(producer sarama.SyncProducer) *KafkaProducer {
	return &KafkaProducer{producer: producer}
}

// Produce sends rec and waits for the broker acknowledgment.
func (p *KafkaProducer) Produce(ctx context.Context, rec Record) (Ack, error) {
	if err := ctx.Err(); err != nil {
		return Ack{}, err
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic:     rec.Stream,
		Key:       sarama.StringEncoder(rec.Key),
		Value:     sarama.ByteEncoder(rec.Value),
		Timestamp: rec.Timestamp,
	})
	if err != nil {
		return Ack{}, err
	}

	return Ack{
		Stream:    rec.Stream,
		Partition: partition,
		Position:  strconv.FormatInt(offset, 10),
		Timestamp: rec.Timestamp,
	}, nil
}

// Close flushes buffered messages and releases the broker connections.
func (p *KafkaProducer) Close() error {
	return p.producer.Close()
}
