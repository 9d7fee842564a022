package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/James9b/fake-api-ecommerce/internal/messaging"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkaGo.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer messageWriter
	topic  string
	log    *logrus.Logger
}

// NewKafkaPublisher creates a publisher writing every event to topic.
func NewKafkaPublisher(brokers []string, topic string, logger *logrus.Logger) messaging.Publisher {
	w := &kafkaGo.Writer{
		Addr:                   kafkaGo.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkaGo.LeastBytes{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
	logger.Infof("Messaging: Kafka publisher created for topic %s (%d brokers)", topic, len(brokers))
	return &kafkaPublisher{writer: w, topic: topic, log: logger}
}

func (k *kafkaPublisher) PublishEvent(ctx context.Context, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := k.writer.WriteMessages(ctx, kafkaGo.Message{
		Key:   []byte(key),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("failed to write event to %s: %w", k.topic, err)
	}
	k.log.Debugf("Messaging: Event with key %s written to %s", key, k.topic)
	return nil
}

func (k *kafkaPublisher) Close() error {
	return k.writer.Close()
}
