// Package consumer reads telemetry events back off Kafka and forwards them to an emitter.
package consumer

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"medsupply/internal/telemetry"
	"medsupply/internal/telemetry/domain"
)

const forwardTimeout = 10 * time.Second

// messageReader is the subset of *kafka.Reader the consumer uses.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer forwards events from a Kafka topic to an EventEmitter (e.g. the OTel log pipeline).
type Consumer struct {
	reader messageReader
	sink   telemetry.EventEmitter
}

// NewKafkaConsumer returns a consumer in groupID reading topic from brokers.
func NewKafkaConsumer(brokers []string, topic, groupID string, sink telemetry.EventEmitter) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		CommitInterval: time.Second,
	})
	return &Consumer{reader: reader, sink: sink}
}

// Run consumes until ctx is done. Malformed messages and sink failures are logged and skipped.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("consumer: kafka read error: %v", err)
			continue
		}
		c.forward(ctx, msg)
	}
}

func (c *Consumer) forward(ctx context.Context, msg kafka.Message) {
	var event domain.Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Printf("consumer: skip malformed event at offset %d: %v", msg.Offset, err)
		return
	}
	if event.EventType == "" {
		log.Printf("consumer: skip event without type at offset %d", msg.Offset)
		return
	}
	fwdCtx, cancel := context.WithTimeout(ctx, forwardTimeout)
	defer cancel()
	if err := c.sink.Emit(fwdCtx, &event); err != nil {
		log.Printf("consumer: forward %s failed: %v", event.EventType, err)
	}
}

// Close closes the Kafka reader.
func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}
