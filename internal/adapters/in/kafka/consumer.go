// Package kafka ingests courier position ticks from the fleet telemetry
// topic. Ticks for different couriers arrive on different partitions keyed
// by courier ID, so per-courier ordering holds within a partition.
package kafka

import (
	"context"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

// MessageHandler processes one message. Returning nil commits the offset;
// returning an error leaves the message uncommitted for redelivery.
type MessageHandler func(ctx context.Context, msg kafka.Message) error

// messageReader is the part of kafka.Reader the consumer drives. Fetching
// and committing stay separate so an offset is only committed after the
// handler succeeds.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads a topic through a consumer group and fans messages out to a
// worker pool. Offsets are committed manually, only after the handler
// succeeds.
type Consumer struct {
	reader  messageReader
	workers int
	logger  *slog.Logger
}

// NewConsumer creates a consumer for the topic. Workers below 1 are clamped
// to a single worker.
func NewConsumer(brokers []string, groupID, topic string, workers int, logger *slog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	if workers < 1 {
		workers = 1
	}

	return &Consumer{
		reader:  reader,
		workers: workers,
		logger:  logger.With("component", "kafka-consumer", "topic", topic),
	}
}

// Start consumes until the context is canceled. Handler errors are logged
// and the message is left uncommitted; the run itself only fails on reader
// errors.
func (c *Consumer) Start(ctx context.Context, handler MessageHandler) error {
	defer func() { _ = c.reader.Close() }()

	jobs := make(chan kafka.Message, 1024)

	for range c.workers {
		go func() {
			for msg := range jobs {
				if err := handler(ctx, msg); err != nil {
					c.logger.Error("message handling failed",
						"partition", msg.Partition,
						"offset", msg.Offset,
						"error", err)
					continue
				}
				if err := c.reader.CommitMessages(ctx, msg); err != nil {
					c.logger.Error("offset commit failed",
						"partition", msg.Partition,
						"offset", msg.Offset,
						"error", err)
				}
			}
		}()
	}

	for {
		// FetchMessage leaves the offset uncommitted; ReadMessage would
		// commit at read time and silently break the manual-commit contract.
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			close(jobs)
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		select {
		case jobs <- msg:
		case <-ctx.Done():
			close(jobs)
			return nil
		}
	}
}
