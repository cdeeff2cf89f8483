package loader

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubFeature struct {
	name    string
	enabled bool
	err     error
	loaded  bool
}

func (s *stubFeature) Name() string    { return s.name }
func (s *stubFeature) IsEnabled() bool { return s.enabled }
func (s *stubFeature) Load(app fiber.Router) error {
	s.loaded = true
	return s.err
}

func TestManager_LoadAll(t *testing.T) {
	enabled := &stubFeature{name: "sync", enabled: true}
	disabled := &stubFeature{name: "reports", enabled: false}

	mgr := NewManager(zap.NewNop())
	mgr.Register(enabled)
	mgr.Register(disabled)

	assert.NoError(t, mgr.LoadAll(fiber.New()))
	assert.True(t, enabled.loaded)
	assert.False(t, disabled.loaded)
	assert.Len(t, mgr.Features(), 2)
}

func TestManager_LoadAllStopsOnError(t *testing.T) {
	failing := &stubFeature{name: "sync", enabled: true, err: assert.AnError}
	next := &stubFeature{name: "settings", enabled: true}

	mgr := NewManager(nil)
	mgr.Register(failing)
	mgr.Register(next)

	err := mgr.LoadAll(fiber.New())
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "sync")
	assert.False(t, next.loaded)
}
