package redis

import (
	"context"
	"errors"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StreamConsumerConfig configures a StreamConsumer.
type StreamConsumerConfig struct {
	// Stream is the Redis stream name to consume from (required).
	Stream string

	// Group is the consumer group name (required).
	Group string

	// Consumer is the consumer name within the group (required).
	Consumer string

	// Count is the max number of entries to read per batch. Default: 50.
	Count int64

	// Block is how long to wait for new entries. Default: 5 seconds.
	Block time.Duration

	// Concurrency is how many entries of one read batch are processed in
	// parallel on the worker pool. Default: 4.
	Concurrency int

	// RetryInterval is how long to wait before retrying after a read
	// error. Default: 1 second.
	RetryInterval time.Duration

	// MaxRetryInterval is the maximum retry interval (with exponential
	// backoff). Default: 30 seconds.
	MaxRetryInterval time.Duration

	// Logger for logging. If nil, uses a no-op logger.
	Logger *zap.Logger
}

// MessageHandler processes a stream message. Return nil to acknowledge the
// entry, or an error to leave it pending for redelivery.
type MessageHandler func(ctx context.Context, msg Message) error

// Message represents a single stream entry with parsed fields.
type Message struct {
	// ID is the Redis stream entry ID (e.g., "1234567890123-0").
	ID string

	// Stream is the stream name this message came from.
	Stream string

	// Values contains the entry fields as key-value pairs.
	Values map[string]interface{}
}

// StreamConsumer consumes measurement-batch entries from a Redis stream
// with a consumer group. Each read batch is fanned out over a worker pool;
// entries are acknowledged individually after their handler succeeds, so a
// failed entry stays pending and is redelivered.
type StreamConsumer struct {
	client *Client
	config StreamConsumerConfig
	pool   pond.Pool
	logger *zap.Logger
}

// NewStreamConsumer creates a new stream consumer.
func NewStreamConsumer(client *Client, config StreamConsumerConfig) (*StreamConsumer, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if config.Stream == "" {
		return nil, errors.New("stream name is required")
	}
	if config.Group == "" {
		return nil, errors.New("consumer group is required")
	}
	if config.Consumer == "" {
		return nil, errors.New("consumer name is required")
	}

	// Apply defaults
	if config.Count == 0 {
		config.Count = 50
	}
	if config.Block == 0 {
		config.Block = 5 * time.Second
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 4
	}
	if config.RetryInterval == 0 {
		config.RetryInterval = 1 * time.Second
	}
	if config.MaxRetryInterval == 0 {
		config.MaxRetryInterval = 30 * time.Second
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &StreamConsumer{
		client: client,
		config: config,
		pool:   pond.NewPool(config.Concurrency),
		logger: logger,
	}, nil
}

// Run starts consuming messages and calls handler for each one. Blocks
// until the context is cancelled. Read errors are retried with exponential
// backoff.
func (sc *StreamConsumer) Run(ctx context.Context, handler MessageHandler) error {
	if err := sc.client.XGroupCreateMkStream(ctx, sc.config.Stream, sc.config.Group, "0"); err != nil {
		return err
	}
	sc.logger.Info("Consumer group ready",
		zap.String("stream", sc.config.Stream),
		zap.String("group", sc.config.Group),
		zap.String("consumer", sc.config.Consumer))

	defer sc.pool.StopAndWait()

	retryInterval := sc.config.RetryInterval

	for {
		select {
		case <-ctx.Done():
			sc.logger.Info("Stream consumer shutting down",
				zap.String("stream", sc.config.Stream),
				zap.String("group", sc.config.Group))
			return ctx.Err()
		default:
		}

		messages, err := sc.readMessages(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			if errors.Is(err, redis.Nil) {
				// No messages available (timeout), continue
				continue
			}

			sc.logger.Warn("Error reading from stream, will retry",
				zap.String("stream", sc.config.Stream),
				zap.Error(err),
				zap.Duration("retryIn", retryInterval))

			select {
			case <-time.After(retryInterval):
				retryInterval = min(retryInterval*2, sc.config.MaxRetryInterval)
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		retryInterval = sc.config.RetryInterval

		sc.processBatch(ctx, handler, messages)
	}
}

// processBatch fans the read entries out over the worker pool and waits for
// all of them before the next read, so redeliveries of this batch cannot
// overlap with it.
func (sc *StreamConsumer) processBatch(ctx context.Context, handler MessageHandler, messages []Message) {
	if len(messages) == 0 {
		return
	}

	group := sc.pool.NewGroup()
	for _, msg := range messages {
		group.SubmitErr(func() error {
			if err := handler(ctx, msg); err != nil {
				sc.logger.Error("Error processing message",
					zap.String("stream", sc.config.Stream),
					zap.String("id", msg.ID),
					zap.Error(err))
				// Leave unacknowledged; the entry stays pending.
				return err
			}

			if _, ackErr := sc.client.XAck(ctx, sc.config.Stream, sc.config.Group, msg.ID); ackErr != nil {
				sc.logger.Warn("Failed to acknowledge message",
					zap.String("stream", sc.config.Stream),
					zap.String("id", msg.ID),
					zap.Error(ackErr))
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		sc.logger.Debug("Batch finished with failed entries",
			zap.String("stream", sc.config.Stream),
			zap.Error(err))
	}
}

// readMessages reads one batch of new entries for this consumer.
func (sc *StreamConsumer) readMessages(ctx context.Context) ([]Message, error) {
	streams, err := sc.client.XReadGroup(ctx,
		sc.config.Group,
		sc.config.Consumer,
		sc.config.Stream,
		">",
		sc.config.Count,
		sc.config.Block,
	)
	if err != nil {
		return nil, err
	}

	var messages []Message
	for _, stream := range streams {
		for _, xmsg := range stream.Messages {
			messages = append(messages, Message{
				ID:     xmsg.ID,
				Stream: stream.Stream,
				Values: xmsg.Values,
			})
		}
	}
	return messages, nil
}
