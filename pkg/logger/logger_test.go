package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/applytrack/pkg/environment"
	"github.com/dmitrymomot/applytrack/pkg/logger"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json by default", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		logger.New(logger.WithOutput(buf)).Info("hello")

		entry := decode(t, buf)
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "hello", entry["msg"])
	})

	t.Run("production preset adds env and service", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithEnvironment(environment.Production, "applytrack"),
		)
		log.Debug("hidden")
		log.Info("shown")

		entry := decode(t, buf)
		assert.Equal(t, "shown", entry["msg"])
		assert.Equal(t, "production", entry["env"])
		assert.Equal(t, "applytrack", entry["service"])
	})

	t.Run("development preset writes text", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		logger.New(
			logger.WithOutput(buf),
			logger.WithEnvironment(environment.Development, "applytrack"),
		).Debug("debugging")

		assert.Contains(t, buf.String(), "level=DEBUG")
		assert.Contains(t, buf.String(), "msg=debugging")
	})

	t.Run("extracts context values", func(t *testing.T) {
		t.Parallel()
		type key struct{}
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithContextValue("trace", key{}))

		log.InfoContext(context.WithValue(context.Background(), key{}, "abc"), "traced")

		assert.Equal(t, "abc", decode(t, buf)["trace"])
	})

	t.Run("invalid format panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { logger.New(logger.WithFormat("xml")) })
	})
}

func TestAttrs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Attr{}, logger.Error(nil))
	assert.Equal(t, "error", logger.Error(errors.New("boom")).Key)
	assert.Equal(t, slog.Attr{}, logger.SubscriptionID(""))
	assert.Equal(t, "sub_1", logger.SubscriptionID("sub_1").Value.String())
	assert.Equal(t, "cover_letter", logger.Feature("cover_letter").Value.String())
	assert.Equal(t, slog.Attr{}, logger.UserID(nil))
}
