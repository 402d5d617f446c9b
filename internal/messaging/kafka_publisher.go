package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/cypherlabdev/value-bet-service/internal/models"
)

// messageWriter is the subset of *kafka.Writer the publisher uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes newly flagged opportunities, keyed by league
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger zerolog.Logger
}

// KafkaPublisherConfig holds Kafka publisher configuration
type KafkaPublisherConfig struct {
	Brokers []string // e.g., ["localhost:9092"]
	Topic   string   // e.g., "value_opportunities"
}

// NewKafkaPublisher creates a new Kafka publisher
func NewKafkaPublisher(config KafkaPublisherConfig, logger zerolog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	return newKafkaPublisher(writer, config.Topic, logger)
}

func newKafkaPublisher(writer messageWriter, topic string, logger zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: writer,
		topic:  topic,
		logger: logger.With().Str("component", "kafka_publisher").Logger(),
	}
}

// Publish writes one message per league set
func (p *KafkaPublisher) Publish(ctx context.Context, set *models.LeagueOpportunities) error {
	msg := models.KafkaOpportunitiesMessage{
		League:        set.League,
		Opportunities: set.Opportunities,
		BatchID:       set.BatchID,
		Timestamp:     set.EvaluatedAt,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal opportunities: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(set.League),
		Value: data,
	}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	p.logger.Debug().
		Str("topic", p.topic).
		Str("league", string(set.League)).
		Int("count", len(set.Opportunities)).
		Msg("published opportunities")

	return nil
}

// Close flushes and closes the Kafka writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
