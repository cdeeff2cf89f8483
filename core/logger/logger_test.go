package logger

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		enabled zapcore.Level
		hidden  zapcore.Level
		wantErr bool
	}{
		{"debug console", Config{Level: "debug", Format: "console"}, zapcore.DebugLevel, zapcore.Level(-2), false},
		{"info json", Config{Level: "info", Format: "json"}, zapcore.InfoLevel, zapcore.DebugLevel, false},
		{"warn", Config{Level: "warn"}, zapcore.WarnLevel, zapcore.InfoLevel, false},
		{"invalid", Config{Level: "loud"}, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.enabled))
			assert.False(t, l.Core().Enabled(tt.hidden))
		})
	}
}

func TestWithRayID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		WithRayID(base, c).Info("without")
		c.Locals("ray_id", "ray-1")
		WithRayID(base, c).Info("with")
		return c.SendStatus(fiber.StatusNoContent)
	})

	_, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Empty(t, entries[0].ContextMap())
	assert.Equal(t, "ray-1", entries[1].ContextMap()["ray_id"])
}
