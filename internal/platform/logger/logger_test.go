package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openkanban/board-api/internal/config"
	"github.com/openkanban/board-api/internal/platform/logger"
)

func TestSetupParsesLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus"} {
		log := logger.Setup(config.ServerConfig{Port: 8080, LogLevel: level})
		assert.NotNil(t, log, "level %q", level)
	}
}

func TestFromContext(t *testing.T) {
	base := slog.Default()

	ctx := context.Background()
	assert.Same(t, slog.Default(), logger.FromContext(ctx))

	scoped := base.With("trace_id", "abc123")
	ctx = logger.WithLogger(ctx, scoped)
	assert.Same(t, scoped, logger.FromContext(ctx))
}

func TestFromContextOrDefault(t *testing.T) {
	fallback := slog.Default().With("component", "test")

	assert.Same(t, fallback, logger.FromContextOrDefault(context.Background(), fallback))

	scoped := slog.Default().With("trace_id", "abc123")
	ctx := logger.WithLogger(context.Background(), scoped)
	assert.Same(t, scoped, logger.FromContextOrDefault(ctx, fallback))
}
