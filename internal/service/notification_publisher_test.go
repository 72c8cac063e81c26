package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Samuel1505/Event-Ticketing/internal/domain"
)

// MockProducer is a mock implementation of jsonProducer
type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) ProduceJSON(ctx context.Context, topic, key string, v interface{}, headers map[string]string) error {
	args := m.Called(ctx, topic, key, v, headers)
	return args.Error(0)
}

func (m *MockProducer) Close() {
	m.Called()
}

func registerRecord() *domain.Record {
	return &domain.Record{
		Seq:         7,
		Kind:        domain.RecordRegisterEvent,
		EventID:     3,
		Actor:       alice,
		TicketID:    2,
		Payment:     1,
		CommittedAt: genesis,
		PrevHash:    "aa",
		Hash:        "bb",
	}
}

func TestKafkaNotificationPublisher_Publish(t *testing.T) {
	producer := new(MockProducer)
	publisher := newKafkaNotificationPublisher(producer, "", "ledger-test")

	rec := registerRecord()
	producer.On("ProduceJSON", mock.Anything, DefaultNotificationTopic, "3",
		rec.Notification(),
		mock.MatchedBy(func(h map[string]string) bool {
			return h[HeaderRecordKind] == "RegisterEvent" &&
				h[HeaderRecordSeq] == "7" &&
				h[HeaderRecordHash] == "bb" &&
				h[HeaderSource] == "ledger-test" &&
				h[HeaderMessageID] != ""
		}),
	).Return(nil).Once()

	require.NoError(t, publisher.Publish(context.Background(), rec))
	producer.AssertExpectations(t)
}

func TestKafkaNotificationPublisher_PublishError(t *testing.T) {
	producer := new(MockProducer)
	publisher := newKafkaNotificationPublisher(producer, "custom.topic", "")

	brokerDown := errors.New("broker down")
	producer.On("ProduceJSON", mock.Anything, "custom.topic", "3", mock.Anything, mock.Anything).
		Return(brokerDown)

	err := publisher.Publish(context.Background(), registerRecord())
	assert.ErrorIs(t, err, brokerDown)
	assert.Contains(t, err.Error(), "record 7")
}

func TestKafkaNotificationPublisher_Close(t *testing.T) {
	producer := new(MockProducer)
	producer.On("Close").Return().Once()

	publisher := newKafkaNotificationPublisher(producer, "", "")
	assert.NoError(t, publisher.Close())
	producer.AssertExpectations(t)
}

func TestNewKafkaNotificationPublisher_Validation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := NewKafkaNotificationPublisher(ctx, nil)
	assert.Error(t, err)

	_, err = NewKafkaNotificationPublisher(ctx, &NotificationPublisherConfig{})
	assert.EqualError(t, err, "kafka brokers are required")
}

func TestNoOpNotificationPublisher(t *testing.T) {
	p := NewNoOpNotificationPublisher()
	assert.NoError(t, p.Publish(context.Background(), registerRecord()))
	assert.NoError(t, p.Close())
}
