package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level       string
		development bool
		want        zapcore.Level
	}{
		{"debug", false, zapcore.DebugLevel},
		{"INFO", true, zapcore.InfoLevel},
		{"warning", false, zapcore.WarnLevel},
		{"error", false, zapcore.ErrorLevel},
		{"development", true, zapcore.DebugLevel},
		{"production", false, zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.level, tt.development))
		})
	}
}

func TestInitAndGet(t *testing.T) {
	require.NoError(t, Init(&Config{Level: "info", ServiceName: "ticket-ledger"}))
	assert.NotNil(t, Get())
	Get().Info("started", zap.String("k", "v"))
	Sync()
}

func TestErrorContext_AttachesTraceID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := &Logger{Logger: zap.New(core)}

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))

	l.ErrorContext(ctx, "journal append failed")
	l.ErrorContext(context.Background(), "no trace")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entries[0].ContextMap()["trace_id"])
	_, ok := entries[1].ContextMap()["trace_id"]
	assert.False(t, ok)
}
