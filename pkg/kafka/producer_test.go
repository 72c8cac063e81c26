package kafka

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToRecord(t *testing.T) {
	ts := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	rec := toRecord(&Message{
		Topic:     "ticket-ledger.notifications",
		Key:       "7",
		Value:     []byte(`{"seq":1}`),
		Headers:   map[string]string{"record_kind": "EventCreated"},
		Timestamp: ts,
	})

	assert.Equal(t, "ticket-ledger.notifications", rec.Topic)
	assert.Equal(t, []byte("7"), rec.Key)
	assert.Equal(t, ts, rec.Timestamp)
	require.Len(t, rec.Headers, 1)
	assert.Equal(t, "record_kind", rec.Headers[0].Key)
	assert.Equal(t, []byte("EventCreated"), rec.Headers[0].Value)
}

func TestToRecord_EmptyKey(t *testing.T) {
	rec := toRecord(&Message{Topic: "t", Value: []byte("v")})
	assert.Nil(t, rec.Key)
	assert.Empty(t, rec.Headers)
}

func TestNewProducer_NoBrokers(t *testing.T) {
	_, err := NewProducer(context.Background(), &ProducerConfig{})
	assert.Error(t, err)
}

func TestProducer_ProduceJSON(t *testing.T) {
	brokers := os.Getenv("TEST_KAFKA_BROKERS")
	if brokers == "" {
		t.Skip("TEST_KAFKA_BROKERS not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	p, err := NewProducer(ctx, &ProducerConfig{
		Brokers:       strings.Split(brokers, ","),
		ClientID:      "ledger-test",
		MaxRetries:    1,
		RetryInterval: time.Second,
	})
	require.NoError(t, err)
	defer p.Close()

	err = p.ProduceJSON(ctx, "ticket-ledger.test", "1", map[string]int{"seq": 1}, nil)
	assert.NoError(t, err)
}
