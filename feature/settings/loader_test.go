package settings

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLoader(t *testing.T) {
	feature := NewFeature(nil, testDonor, zap.NewNop())

	assert.Equal(t, "settings", feature.Name())
	assert.True(t, feature.IsEnabled())
	assert.NotNil(t, feature.Service())

	app := fiber.New()
	assert.NoError(t, feature.Load(app))
}
