package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("SOKO_DATA_URL", "http://data.internal:9000")
	t.Setenv("SOKO_DATA_PUBLISHABLE_KEY", "pk_test_123")
	t.Setenv("SOKO_SESSION_SIGNING_KEY", "test-signing-key")
}

func TestLoad(t *testing.T) {
	t.Run("applies defaults when only required values are set", func(t *testing.T) {
		setRequired(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, []string{"en", "sw", "fr"}, cfg.Locales)
		assert.Equal(t, "soko.gate.audit", cfg.Kafka.Topic)
	})

	t.Run("fails without data service URL", func(t *testing.T) {
		t.Setenv("SOKO_DATA_URL", "")
		t.Setenv("SOKO_DATA_PUBLISHABLE_KEY", "pk_test_123")
		t.Setenv("SOKO_SESSION_SIGNING_KEY", "test-signing-key")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("fails without publishable key", func(t *testing.T) {
		t.Setenv("SOKO_DATA_URL", "http://data.internal:9000")
		t.Setenv("SOKO_DATA_PUBLISHABLE_KEY", "")
		t.Setenv("SOKO_SESSION_SIGNING_KEY", "test-signing-key")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("parses overrides", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SOKO_ADDR", ":9999")
		t.Setenv("SOKO_LOCALES", "sw,en")
		t.Setenv("SOKO_KAFKA_BROKERS", "k1:9092,k2:9092")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, ":9999", cfg.Addr)
		assert.Equal(t, []string{"sw", "en"}, cfg.Locales)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	})
}
