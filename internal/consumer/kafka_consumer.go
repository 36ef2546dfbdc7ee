package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"github.com/Deven107/weather-etl-pipeline/internal/config"
	"github.com/Deven107/weather-etl-pipeline/internal/pkg/logger"
)

// BatchHandler receives a buffered batch of raw snapshots.
type BatchHandler func(ctx context.Context, snapshots []map[string]interface{}) error

type Consumer interface {
	Consume(ctx context.Context, handler BatchHandler) error
	HealthCheck(ctx context.Context) error
	Close() error
}

// KafkaConsumer reads raw snapshots from the transport topic and hands them
// to the loader in batches. Messages are buffered until the batch size is
// reached or the flush timeout elapses, whichever comes first.
type KafkaConsumer struct {
	consumer     sarama.ConsumerGroup
	broker       string
	topic        string
	groupID      string
	batchSize    int
	flushTimeout time.Duration
	logger       logger.Logger
	wg           sync.WaitGroup
	cancel       context.CancelFunc
}

func NewKafkaConsumer(cfg config.KafkaConfig, log logger.Logger) (*KafkaConsumer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Version = sarama.V2_8_0_0
	saramaCfg.Consumer.Return.Errors = true
	saramaCfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaCfg.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRange()
	saramaCfg.Consumer.MaxProcessingTime = 30 * time.Second
	saramaCfg.Net.DialTimeout = 30 * time.Second
	saramaCfg.Net.ReadTimeout = 30 * time.Second
	saramaCfg.Net.WriteTimeout = 30 * time.Second

	group, err := sarama.NewConsumerGroup([]string{cfg.Broker}, cfg.GroupID, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka consumer: %w", err)
	}

	return &KafkaConsumer{
		consumer:     group,
		broker:       cfg.Broker,
		topic:        cfg.Topic,
		groupID:      cfg.GroupID,
		batchSize:    cfg.BatchSize,
		flushTimeout: cfg.FlushTimeout,
		logger:       log.WithField("component", "kafka_consumer"),
	}, nil
}

func (k *KafkaConsumer) Consume(ctx context.Context, handler BatchHandler) error {
	k.logger.Infof("Starting Kafka consumer for topic: %s, group: %s", k.topic, k.groupID)

	ctx, cancel := context.WithCancel(ctx)
	k.cancel = cancel

	batchHandler := &consumerHandler{
		handler:      handler,
		batchSize:    k.batchSize,
		flushTimeout: k.flushTimeout,
		logger:       k.logger.WithField("handler", "kafka"),
	}

	k.wg.Add(1)
	go func() {
		defer k.wg.Done()
		for {
			select {
			case <-ctx.Done():
				k.logger.Info("Kafka consumer context cancelled, stopping...")
				return
			default:
				if err := k.consumer.Consume(ctx, []string{k.topic}, batchHandler); err != nil {
					k.logger.Errorf("Error consuming from Kafka: %v", err)
					time.Sleep(5 * time.Second)
				}
			}
		}
	}()

	go func() {
		for err := range k.consumer.Errors() {
			k.logger.Errorf("Kafka consumer error: %v", err)
		}
	}()

	k.logger.Info("Kafka consumer started successfully")
	return nil
}

func (k *KafkaConsumer) HealthCheck(ctx context.Context) error {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Version = sarama.V2_8_0_0
	saramaCfg.Net.DialTimeout = 5 * time.Second

	client, err := sarama.NewClient([]string{k.broker}, saramaCfg)
	if err != nil {
		return fmt.Errorf("failed to create Kafka client: %w", err)
	}
	defer client.Close()

	topics, err := client.Topics()
	if err != nil {
		return fmt.Errorf("failed to get topics: %w", err)
	}

	for _, topic := range topics {
		if topic == k.topic {
			return nil
		}
	}
	return fmt.Errorf("topic %s not found", k.topic)
}

func (k *KafkaConsumer) Close() error {
	k.logger.Info("Closing Kafka consumer...")

	if k.cancel != nil {
		k.cancel()
	}

	k.wg.Wait()

	if err := k.consumer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka consumer: %w", err)
	}

	k.logger.Info("Kafka consumer closed successfully")
	return nil
}

type consumerHandler struct {
	handler      BatchHandler
	batchSize    int
	flushTimeout time.Duration
	logger       logger.Logger
}

func (h *consumerHandler) Setup(sarama.ConsumerGroupSession) error {
	h.logger.Info("Kafka consumer handler setup completed")
	return nil
}

func (h *consumerHandler) Cleanup(sarama.ConsumerGroupSession) error {
	h.logger.Info("Kafka consumer handler cleanup")
	return nil
}

// ConsumeClaim buffers snapshot messages and flushes them to the batch
// handler. Offsets are marked only after the batch handler returns, so an
// interrupted load is re-delivered; downstream upserts make replays safe.
func (h *consumerHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	h.logger.Infof("Starting to consume claims for partition %d", claim.Partition())

	batch := make([]map[string]interface{}, 0, h.batchSize)
	var lastMessage *sarama.ConsumerMessage

	flushTimer := time.NewTimer(h.flushTimeout)
	defer flushTimer.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := h.handler(session.Context(), batch); err != nil {
			h.logger.Errorf("Failed to handle batch of %d snapshots: %v", len(batch), err)
			return
		}
		session.MarkMessage(lastMessage, "")
		h.logger.Debugf("Flushed batch of %d snapshots (offset: %d)", len(batch), lastMessage.Offset)
		batch = batch[:0]
	}

	for {
		select {
		case <-session.Context().Done():
			h.logger.Info("Consumer session context done, stopping consumption")
			flush()
			return nil

		case <-flushTimer.C:
			flush()
			flushTimer.Reset(h.flushTimeout)

		case message, ok := <-claim.Messages():
			if !ok {
				flush()
				return nil
			}

			snapshot, err := h.deserializeMessage(message.Value)
			if err != nil {
				h.logger.Errorf("Failed to deserialize message: %v", err)
				session.MarkMessage(message, "")
				continue
			}

			batch = append(batch, snapshot)
			lastMessage = message

			if len(batch) >= h.batchSize {
				flush()
				flushTimer.Reset(h.flushTimeout)
			}
		}
	}
}

func (h *consumerHandler) deserializeMessage(data []byte) (map[string]interface{}, error) {
	var snapshot map[string]interface{}
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal Kafka message: %w", err)
	}
	return snapshot, nil
}
