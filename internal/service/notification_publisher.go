package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Samuel1505/Event-Ticketing/internal/domain"
	"github.com/Samuel1505/Event-Ticketing/pkg/kafka"
)

// DefaultNotificationTopic is the topic notifications are relayed to
const DefaultNotificationTopic = "ticket-ledger.notifications"

// Message headers set on every relayed notification
const (
	HeaderRecordKind = "record_kind"
	HeaderRecordSeq  = "record_seq"
	HeaderRecordHash = "record_hash"
	HeaderMessageID  = "message_id"
	HeaderSource     = "source"
)

// jsonProducer is the subset of *kafka.Producer the publisher needs
type jsonProducer interface {
	ProduceJSON(ctx context.Context, topic, key string, v interface{}, headers map[string]string) error
	Close()
}

// KafkaNotificationPublisher implements NotificationPublisher using Kafka
type KafkaNotificationPublisher struct {
	producer    jsonProducer
	topic       string
	serviceName string
}

// NotificationPublisherConfig contains configuration for the notification publisher
type NotificationPublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

// NewKafkaNotificationPublisher creates a new Kafka notification publisher
func NewKafkaNotificationPublisher(ctx context.Context, cfg *NotificationPublisherConfig) (*KafkaNotificationPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("notification publisher config is required")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "ticket-ledger-relay"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		BatchSize:     100,
		LingerMs:      10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return newKafkaNotificationPublisher(producer, cfg.Topic, cfg.ServiceName), nil
}

func newKafkaNotificationPublisher(producer jsonProducer, topic, serviceName string) *KafkaNotificationPublisher {
	if topic == "" {
		topic = DefaultNotificationTopic
	}
	if serviceName == "" {
		serviceName = "ticket-ledger"
	}
	return &KafkaNotificationPublisher{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
	}
}

// Publish publishes the record's notification keyed by event id, so all
// notifications of one event land on the same partition in commit order
func (p *KafkaNotificationPublisher) Publish(ctx context.Context, rec *domain.Record) error {
	headers := map[string]string{
		HeaderRecordKind: string(rec.Kind),
		HeaderRecordSeq:  strconv.FormatUint(rec.Seq, 10),
		HeaderRecordHash: rec.Hash,
		HeaderMessageID:  uuid.New().String(),
		HeaderSource:     p.serviceName,
		"content_type":   "application/json",
	}

	key := strconv.FormatUint(rec.EventID, 10)
	if err := p.producer.ProduceJSON(ctx, p.topic, key, rec.Notification(), headers); err != nil {
		return fmt.Errorf("failed to publish record %d: %w", rec.Seq, err)
	}
	return nil
}

// Close closes the notification publisher
func (p *KafkaNotificationPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

// NoOpNotificationPublisher is a no-op implementation for when Kafka is not configured
type NoOpNotificationPublisher struct{}

// NewNoOpNotificationPublisher creates a new no-op notification publisher
func NewNoOpNotificationPublisher() *NoOpNotificationPublisher {
	return &NoOpNotificationPublisher{}
}

func (p *NoOpNotificationPublisher) Publish(ctx context.Context, rec *domain.Record) error {
	return nil
}

func (p *NoOpNotificationPublisher) Close() error {
	return nil
}
