package producer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deven107/weather-etl-pipeline/internal/pkg/logger"
)

var testLogger = logger.New("error", "development")

func newTestProducer(t *testing.T) (*KafkaProducer, *mocks.SyncProducer) {
	t.Helper()

	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	mockProducer := mocks.NewSyncProducer(t, cfg)

	return &KafkaProducer{
		producer: mockProducer,
		topic:    "raw-snapshots",
		logger:   testLogger,
	}, mockProducer
}

func snapshot(city string) map[string]interface{} {
	return map[string]interface{}{
		"city":      city,
		"latitude":  51.5074,
		"longitude": -0.1278,
		"timestamp": "2024-06-15T12:00:00Z",
	}
}

func TestKafkaProducer_Produce(t *testing.T) {
	t.Run("successful produce keyed by city", func(t *testing.T) {
		producer, mockProducer := newTestProducer(t)

		mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
			key, err := msg.Key.Encode()
			require.NoError(t, err)
			assert.Equal(t, "London", string(key))

			value, err := msg.Value.Encode()
			require.NoError(t, err)

			var decoded map[string]interface{}
			require.NoError(t, json.Unmarshal(value, &decoded))
			assert.Equal(t, "London", decoded["city"])
			return nil
		})

		err := producer.Produce(context.Background(), snapshot("London"))
		assert.NoError(t, err)
	})

	t.Run("broker error surfaces", func(t *testing.T) {
		producer, mockProducer := newTestProducer(t)

		mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

		err := producer.Produce(context.Background(), snapshot("London"))
		assert.Error(t, err)
	})
}

func TestKafkaProducer_ProduceBatch(t *testing.T) {
	t.Run("publishes every snapshot", func(t *testing.T) {
		producer, mockProducer := newTestProducer(t)

		mockProducer.ExpectSendMessageAndSucceed()
		mockProducer.ExpectSendMessageAndSucceed()

		snapshots := []map[string]interface{}{snapshot("London"), snapshot("Paris")}

		err := producer.ProduceBatch(context.Background(), snapshots)
		assert.NoError(t, err)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		producer := &KafkaProducer{topic: "raw-snapshots", logger: testLogger}

		err := producer.ProduceBatch(context.Background(), nil)
		assert.NoError(t, err)
	})
}

func TestKafkaProducer_Close_NilProducer(t *testing.T) {
	producer := &KafkaProducer{topic: "raw-snapshots", logger: testLogger}

	assert.NoError(t, producer.Close())
}
