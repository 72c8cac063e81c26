package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig(retries int) *Config {
	return &Config{
		MaxRetries:      retries,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2,
	}
}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	result := Do(context.Background(), fastConfig(3), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("broker unavailable")
		}
		return nil
	})

	if result.Err != nil {
		t.Fatalf("expected success, got %v", result.Err)
	}
	if result.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", result.Attempts)
	}
}

func TestDo_MaxRetriesExceeded(t *testing.T) {
	boom := errors.New("boom")
	result := Do(context.Background(), fastConfig(2), func(ctx context.Context) error {
		return boom
	})

	if !errors.Is(result.Err, ErrMaxRetriesExceeded) {
		t.Fatalf("expected ErrMaxRetriesExceeded, got %v", result.Err)
	}
	if result.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", result.Attempts)
	}
	if !errors.Is(result.LastError, boom) {
		t.Errorf("expected last error boom, got %v", result.LastError)
	}
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	bad := errors.New("cannot encode")
	calls := 0
	result := Do(context.Background(), fastConfig(5), func(ctx context.Context) error {
		calls++
		return Permanent(bad)
	})

	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if !errors.Is(result.Err, bad) {
		t.Errorf("expected permanent error to surface, got %v", result.Err)
	}
}

func TestDo_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := Do(ctx, fastConfig(3), func(ctx context.Context) error {
		t.Fatal("operation should not run")
		return nil
	})
	if !errors.Is(result.Err, ErrContextCanceled) {
		t.Errorf("expected ErrContextCanceled, got %v", result.Err)
	}
}

func TestDo_CallbackPerRetry(t *testing.T) {
	var attempts []int
	New(fastConfig(2)).Do(context.Background(), func(ctx context.Context) error {
		return errors.New("fail")
	}, func(attempt int, err error, next time.Duration) {
		attempts = append(attempts, attempt)
		if next <= 0 || next > 5*time.Millisecond {
			t.Errorf("interval %v out of range", next)
		}
	})

	if len(attempts) != 2 || attempts[0] != 1 || attempts[1] != 2 {
		t.Errorf("unexpected callback attempts %v", attempts)
	}
}

func TestNew_FillsDefaults(t *testing.T) {
	r := New(&Config{MaxRetries: 1, JitterFactor: 3})
	if r.config.InitialInterval != DefaultConfig().InitialInterval {
		t.Errorf("expected default initial interval, got %v", r.config.InitialInterval)
	}
	if r.config.JitterFactor != 1 {
		t.Errorf("expected jitter clamped to 1, got %v", r.config.JitterFactor)
	}
}
