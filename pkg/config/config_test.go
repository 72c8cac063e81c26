package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithPath_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.env")
	require.NoError(t, os.WriteFile(path, []byte("APP_ENVIRONMENT=test\n"), 0o600))

	cfg, err := LoadWithPath(path)
	require.NoError(t, err)

	assert.Equal(t, "ticket-ledger", cfg.App.Name)
	assert.Equal(t, "test", cfg.App.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.False(t, cfg.LedgerDatabase.Enabled())
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, "ticket-ledger.notifications", cfg.Kafka.NotificationTopic)
	assert.Equal(t, 500*time.Millisecond, cfg.Relay.PollInterval)
	assert.Equal(t, 100, cfg.Relay.BatchSize)
}

func TestLoadWithPath_FileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.env")
	content := "SERVER_PORT=9090\n" +
		"LEDGER_DATABASE_HOST=db\n" +
		"KAFKA_BROKERS=k1:9092, k2:9092\n" +
		"RELAY_BATCH_SIZE=10\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadWithPath(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.LedgerDatabase.Enabled())
	assert.NoError(t, cfg.ValidateLedgerDatabase())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 10, cfg.Relay.BatchSize)
}

func TestLoadWithPath_MissingFile(t *testing.T) {
	_, err := LoadWithPath(filepath.Join(t.TempDir(), "absent.env"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:    AppConfig{Name: "ticket-ledger", Environment: "development"},
			Server: ServerConfig{Port: 8080},
			JWT:    JWTConfig{Secret: "s3cret"},
			Relay:  RelayConfig{BatchSize: 100},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing name", func(c *Config) { c.App.Name = "" }, true},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, true},
		{"missing secret", func(c *Config) { c.JWT.Secret = "" }, true},
		{"default secret in production", func(c *Config) {
			c.App.Environment = "production"
			c.JWT.Secret = defaultJWTSecret
		}, true},
		{"zero batch", func(c *Config) { c.Relay.BatchSize = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
