package producer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/IBM/sarama"

	"github.com/Deven107/weather-etl-pipeline/internal/config"
	"github.com/Deven107/weather-etl-pipeline/internal/pkg/logger"
)

// Producer publishes raw snapshots to the transport between the collector
// and the loader.
type Producer interface {
	Produce(ctx context.Context, snapshot map[string]interface{}) error
	ProduceBatch(ctx context.Context, snapshots []map[string]interface{}) error
	HealthCheck(ctx context.Context) error
	Close() error
}

type KafkaProducer struct {
	producer sarama.SyncProducer
	topic    string
	logger   logger.Logger
}

func NewKafkaProducer(cfg config.KafkaConfig, log logger.Logger) (*KafkaProducer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.RequiredAcks = sarama.RequiredAcks(cfg.RequiredAcks)
	saramaCfg.Producer.Retry.Max = cfg.MaxRetries
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Producer.Timeout = 5 * time.Second

	syncProducer, err := sarama.NewSyncProducer([]string{cfg.Broker}, saramaCfg)
	if err != nil {
		return nil, err
	}

	return &KafkaProducer{
		producer: syncProducer,
		topic:    cfg.Topic,
		logger:   log.WithField("component", "kafka_producer"),
	}, nil
}

// Produce publishes one snapshot keyed by city, so measurements for a city
// land on one partition in order.
func (k *KafkaProducer) Produce(ctx context.Context, snapshot map[string]interface{}) error {
	msg, err := k.buildMessage(snapshot)
	if err != nil {
		return err
	}

	_, _, err = k.producer.SendMessage(msg)
	if err != nil {
		k.logger.Error("failed to produce message", err)
		return err
	}
	return nil
}

func (k *KafkaProducer) ProduceBatch(ctx context.Context, snapshots []map[string]interface{}) error {
	if len(snapshots) == 0 {
		return nil
	}

	messages := make([]*sarama.ProducerMessage, 0, len(snapshots))
	for _, snapshot := range snapshots {
		msg, err := k.buildMessage(snapshot)
		if err != nil {
			return err
		}
		messages = append(messages, msg)
	}

	if err := k.producer.SendMessages(messages); err != nil {
		k.logger.Error("failed to produce batch", err)
		return err
	}

	k.logger.Infof("Produced batch of %d snapshots", len(snapshots))
	return nil
}

func (k *KafkaProducer) buildMessage(snapshot map[string]interface{}) (*sarama.ProducerMessage, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}

	msg := &sarama.ProducerMessage{
		Topic: k.topic,
		Value: sarama.ByteEncoder(data),
	}
	if city, ok := snapshot["city"].(string); ok && city != "" {
		msg.Key = sarama.StringEncoder(city)
	}
	return msg, nil
}

func (k *KafkaProducer) HealthCheck(ctx context.Context) error {
	if k.producer == nil {
		return errors.New("kafka producer is nil")
	}

	msg := &sarama.ProducerMessage{
		Topic: "__healthcheck",
		Value: sarama.ByteEncoder([]byte("ping")),
	}

	_, _, err := k.producer.SendMessage(msg)
	return err
}

func (k *KafkaProducer) Close() error {
	if k.producer == nil {
		return nil
	}
	return k.producer.Close()
}
