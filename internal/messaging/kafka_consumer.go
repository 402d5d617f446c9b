package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/cypherlabdev/value-bet-service/internal/fetch"
	"github.com/cypherlabdev/value-bet-service/internal/models"
	"github.com/cypherlabdev/value-bet-service/internal/provider/fanduel"
	"github.com/cypherlabdev/value-bet-service/internal/provider/pinnacle"
	"github.com/cypherlabdev/value-bet-service/internal/service"
)

// KafkaConsumer consumes raw league snapshots from Kafka and runs them through the pipeline
type KafkaConsumer struct {
	reader    *kafka.Reader
	processor service.Processor
	policy    models.SizingPolicy
	logger    zerolog.Logger
}

// KafkaConsumerConfig holds Kafka consumer configuration
type KafkaConsumerConfig struct {
	Brokers []string // e.g., ["localhost:9092"]
	Topic   string   // e.g., "league_snapshots"
	GroupID string   // e.g., "value-bet-service"
}

// NewKafkaConsumer creates a new Kafka consumer
func NewKafkaConsumer(
	config KafkaConsumerConfig,
	processor service.Processor,
	policy models.SizingPolicy,
	logger zerolog.Logger,
) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        config.Brokers,
		Topic:          config.Topic,
		GroupID:        config.GroupID,
		MinBytes:       1e3,  // 1KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	return &KafkaConsumer{
		reader:    reader,
		processor: processor,
		policy:    policy,
		logger:    logger.With().Str("component", "kafka_consumer").Logger(),
	}
}

// Start begins consuming messages from Kafka
func (c *KafkaConsumer) Start(ctx context.Context) error {
	c.logger.Info().
		Str("topic", c.reader.Config().Topic).
		Str("group_id", c.reader.Config().GroupID).
		Msg("started consuming from Kafka")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("stopping Kafka consumer")
			return c.reader.Close()

		default:
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				c.logger.Error().Err(err).Msg("failed to fetch message")
				continue
			}

			if err := c.processMessage(ctx, msg); err != nil {
				c.logger.Error().
					Err(err).
					Int64("offset", msg.Offset).
					Str("key", string(msg.Key)).
					Msg("failed to process message")
				// Don't commit if processing failed
				continue
			}

			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				c.logger.Error().Err(err).Msg("failed to commit message")
			}
		}
	}
}

// decodeSnapshot unpacks a snapshot message. A provider payload that is absent or
// malformed becomes nil, the same as a failed fetch.
func (c *KafkaConsumer) decodeSnapshot(value []byte) (fetch.LeagueSnapshot, string, error) {
	var msg models.KafkaSnapshotMessage
	if err := json.Unmarshal(value, &msg); err != nil {
		return fetch.LeagueSnapshot{}, "", fmt.Errorf("failed to unmarshal message: %w", err)
	}
	if _, ok := models.LookupLeague(msg.League); !ok {
		return fetch.LeagueSnapshot{}, "", fmt.Errorf("%w: %q", service.ErrUnknownLeague, msg.League)
	}

	snap := fetch.LeagueSnapshot{League: msg.League, FetchedAt: msg.Timestamp}

	if len(msg.Reference) > 0 {
		var ref pinnacle.Snapshot
		if err := json.Unmarshal(msg.Reference, &ref); err != nil {
			c.logger.Warn().Err(err).Str("batch_id", msg.BatchID).Msg("malformed reference payload")
		} else {
			snap.Reference = &ref
		}
	}

	if len(msg.Retail) > 0 {
		var page fanduel.Page
		if err := json.Unmarshal(msg.Retail, &page); err != nil {
			c.logger.Warn().Err(err).Str("batch_id", msg.BatchID).Msg("malformed retail payload")
		} else {
			snap.Retail = &page
		}
	}

	return snap, msg.BatchID, nil
}

// processMessage processes a single Kafka message
func (c *KafkaConsumer) processMessage(ctx context.Context, msg kafka.Message) error {
	snap, batchID, err := c.decodeSnapshot(msg.Value)
	if err != nil {
		return err
	}

	c.logger.Debug().
		Str("league", string(snap.League)).
		Str("batch_id", batchID).
		Msg("processing league snapshot")

	set, err := c.processor.Process(ctx, snap, c.policy, batchID)
	if err != nil {
		return fmt.Errorf("failed to process snapshot: %w", err)
	}

	c.logger.Info().
		Str("league", string(snap.League)).
		Str("batch_id", batchID).
		Int("output_count", len(set.Opportunities)).
		Msg("processed league snapshot")

	return nil
}

// Close closes the Kafka reader
func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
