package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestConfigureOnce(t *testing.T) {
	t.Cleanup(reset)
	reset()

	var first, second bytes.Buffer
	Configure(Config{Level: "debug", Output: &first, Service: "test"})
	Configure(Config{Level: "error", Output: &second})

	l := WithComponent("session")
	l.Debug().Str("event", "session.transition").Msg("changed")

	assert.Zero(t, second.Len())
	entry := decode(t, &first)
	assert.Equal(t, "test", entry["service"])
	assert.Equal(t, "session", entry["component"])
	assert.Equal(t, "session.transition", entry["event"])
	assert.Equal(t, "debug", entry["level"])
}

func TestConfigureLevelFromEnv(t *testing.T) {
	t.Cleanup(reset)
	reset()
	t.Setenv("LOG_LEVEL", "warn")

	var buf bytes.Buffer
	Configure(Config{Output: &buf})
	l := Base()
	l.Info().Msg("dropped")
	assert.Zero(t, buf.Len())
	l.Warn().Msg("kept")
	assert.NotZero(t, buf.Len())
}

func TestConfigureInvalidLevelFallsBackToInfo(t *testing.T) {
	t.Cleanup(reset)
	reset()

	var buf bytes.Buffer
	Configure(Config{Level: "loud", Output: &buf})
	assert.Equal(t, zerolog.InfoLevel, Base().GetLevel())
}

func TestFromContext(t *testing.T) {
	t.Cleanup(reset)
	reset()

	var base, scoped bytes.Buffer
	Configure(Config{Output: &base})

	ctx := ContextWithRequestID(context.Background(), "req-1")
	FromContext(ctx).Info().Msg("from base")
	entry := decode(t, &base)
	assert.Equal(t, "req-1", entry["request_id"])

	l := zerolog.New(&scoped)
	ctx = l.WithContext(ctx)
	FromContext(ctx).Info().Msg("from ctx")
	entry = decode(t, &scoped)
	assert.Equal(t, "req-1", entry["request_id"])
	assert.NotContains(t, entry, "service")

	assert.Empty(t, RequestIDFromContext(context.Background()))
}
