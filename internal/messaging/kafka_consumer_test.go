package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cypherlabdev/value-bet-service/internal/fetch"
	"github.com/cypherlabdev/value-bet-service/internal/mocks"
	"github.com/cypherlabdev/value-bet-service/internal/models"
	"github.com/cypherlabdev/value-bet-service/internal/service"
)

// testKafkaConsumerSetup is a helper struct to hold test dependencies
type testKafkaConsumerSetup struct {
	mockProcessor *mocks.MockProcessor
	consumer      *KafkaConsumer
	ctrl          *gomock.Controller
}

// setupTestKafkaConsumer creates a test consumer with a mocked processor
func setupTestKafkaConsumer(t *testing.T) *testKafkaConsumerSetup {
	ctrl := gomock.NewController(t)
	mockProcessor := mocks.NewMockProcessor(ctrl)

	config := KafkaConsumerConfig{
		Brokers: []string{"localhost:9092"},
		Topic:   "league_snapshots",
		GroupID: "test-group",
	}

	return &testKafkaConsumerSetup{
		mockProcessor: mockProcessor,
		consumer:      NewKafkaConsumer(config, mockProcessor, models.DefaultSizingPolicy(), zerolog.Nop()),
		ctrl:          ctrl,
	}
}

// cleanup cleans up test resources
func (s *testKafkaConsumerSetup) cleanup() {
	s.consumer.Close()
	s.ctrl.Finish()
}

const referenceJSON = `{"matchups":[{"id":1001,"startTime":"2026-01-16T00:30:00Z","participants":[
	{"name":"Boston Celtics","alignment":"home"},{"name":"Los Angeles Lakers","alignment":"away"}]}],
	"markets":[{"matchupId":1001,"key":"s;0;m","prices":[{"designation":"home","price":-150},
	{"designation":"away","price":130}],"limits":[{"amount":500}]}]}`

const retailJSON = `{"layout":{"coupons":{"32866":{"display":[{"rows":[{"eventId":34001}]}]}}},
	"attachments":{"events":{"34001":{"eventId":34001,"name":"Los Angeles Lakers @ Boston Celtics"}},
	"markets":{"734.1":{"marketId":"734.1","eventId":34001,"marketType":"MONEY_LINE","runners":[
	{"selectionId":11,"runnerName":"Los Angeles Lakers","winRunnerOdds":{"americanDisplayOdds":{"americanOdds":100}}},
	{"selectionId":12,"runnerName":"Boston Celtics","winRunnerOdds":{"americanDisplayOdds":{"americanOdds":-120}}}]}}}}`

func snapshotMessage(t *testing.T, league models.League, reference, retail string) kafka.Message {
	msg := models.KafkaSnapshotMessage{
		League:    league,
		BatchID:   "batch-123",
		Timestamp: time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC),
	}
	if reference != "" {
		msg.Reference = json.RawMessage(reference)
	}
	if retail != "" {
		msg.Retail = json.RawMessage(retail)
	}

	value, err := json.Marshal(msg)
	require.NoError(t, err)
	return kafka.Message{Key: []byte(league), Value: value}
}

// TestNewKafkaConsumer tests consumer creation
func TestNewKafkaConsumer(t *testing.T) {
	setup := setupTestKafkaConsumer(t)
	defer setup.cleanup()

	assert.NotNil(t, setup.consumer)
	assert.Equal(t, "league_snapshots", setup.consumer.reader.Config().Topic)
	assert.Equal(t, "test-group", setup.consumer.reader.Config().GroupID)
	assert.Equal(t, models.DefaultSizingPolicy(), setup.consumer.policy)
}

// TestProcessMessage_Success tests decoding both payloads and handing them to the processor
func TestProcessMessage_Success(t *testing.T) {
	setup := setupTestKafkaConsumer(t)
	defer setup.cleanup()

	setup.mockProcessor.EXPECT().
		Process(gomock.Any(), gomock.Any(), models.DefaultSizingPolicy(), "batch-123").
		DoAndReturn(func(_ context.Context, snap fetch.LeagueSnapshot, _ models.SizingPolicy, batchID string) (*models.LeagueOpportunities, error) {
			assert.Equal(t, models.LeagueNBA, snap.League)
			require.NotNil(t, snap.Reference)
			require.NotNil(t, snap.Retail)
			assert.Len(t, snap.Reference.Markets, 1)
			assert.Equal(t, -150, snap.Reference.Markets[0].Prices[0].Price)
			assert.Contains(t, snap.Retail.Attachments.Markets, "734.1")
			return &models.LeagueOpportunities{League: snap.League, BatchID: batchID}, nil
		})

	err := setup.consumer.processMessage(context.Background(), snapshotMessage(t, models.LeagueNBA, referenceJSON, retailJSON))
	assert.NoError(t, err)
}

// TestProcessMessage_MissingPayload tests that an absent or malformed payload becomes nil
func TestProcessMessage_MissingPayload(t *testing.T) {
	setup := setupTestKafkaConsumer(t)
	defer setup.cleanup()

	setup.mockProcessor.EXPECT().
		Process(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, snap fetch.LeagueSnapshot, _ models.SizingPolicy, batchID string) (*models.LeagueOpportunities, error) {
			assert.NotNil(t, snap.Reference)
			assert.Nil(t, snap.Retail)
			return &models.LeagueOpportunities{League: snap.League}, nil
		})

	err := setup.consumer.processMessage(context.Background(), snapshotMessage(t, models.LeagueNBA, referenceJSON, `"not a page"`))
	assert.NoError(t, err)
}

// TestProcessMessage_InvalidJSON tests processing with invalid JSON
func TestProcessMessage_InvalidJSON(t *testing.T) {
	setup := setupTestKafkaConsumer(t)
	defer setup.cleanup()

	err := setup.consumer.processMessage(context.Background(), kafka.Message{Value: []byte("{invalid")})
	assert.Error(t, err)
}

// TestProcessMessage_UnknownLeague tests rejection of a league outside the catalog
func TestProcessMessage_UnknownLeague(t *testing.T) {
	setup := setupTestKafkaConsumer(t)
	defer setup.cleanup()

	err := setup.consumer.processMessage(context.Background(), snapshotMessage(t, "xfl", referenceJSON, retailJSON))
	assert.ErrorIs(t, err, service.ErrUnknownLeague)
}

// TestProcessMessage_ProcessorFailure tests that pipeline errors are surfaced
func TestProcessMessage_ProcessorFailure(t *testing.T) {
	setup := setupTestKafkaConsumer(t)
	defer setup.cleanup()

	setup.mockProcessor.EXPECT().
		Process(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("invalid sizing policy"))

	err := setup.consumer.processMessage(context.Background(), snapshotMessage(t, models.LeagueNBA, referenceJSON, retailJSON))
	assert.Error(t, err)
}

// TestKafkaConsumerConfig tests consumer configuration variants
func TestKafkaConsumerConfig(t *testing.T) {
	ctrl := gomock.NewController(t)
	processor := mocks.NewMockProcessor(ctrl)

	tests := []struct {
		name   string
		config KafkaConsumerConfig
	}{
		{
			name: "Single broker",
			config: KafkaConsumerConfig{
				Brokers: []string{"localhost:9092"},
				Topic:   "league_snapshots",
				GroupID: "test-group",
			},
		},
		{
			name: "Multiple brokers",
			config: KafkaConsumerConfig{
				Brokers: []string{"broker1:9092", "broker2:9092", "broker3:9092"},
				Topic:   "league_snapshots",
				GroupID: "test-group",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			consumer := NewKafkaConsumer(tt.config, processor, models.DefaultSizingPolicy(), zerolog.Nop())

			assert.Equal(t, tt.config.Topic, consumer.reader.Config().Topic)
			assert.Equal(t, tt.config.GroupID, consumer.reader.Config().GroupID)
			assert.Equal(t, tt.config.Brokers, consumer.reader.Config().Brokers)

			consumer.Close()
		})
	}
}

// TestKafkaConsumer_ContextCancellation tests context cancellation handling
func TestKafkaConsumer_ContextCancellation(t *testing.T) {
	setup := setupTestKafkaConsumer(t)
	defer setup.cleanup()

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error)
	go func() {
		done <- setup.consumer.Start(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Consumer did not stop within timeout")
	}
}
