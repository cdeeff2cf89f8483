package settings

import (
	"guild-sync/core/donor"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the settings feature.
func NewFeature(store Store, donorCfg donor.Config, logger *zap.Logger) *Feature {
	svc := NewService(store, donorCfg, logger)
	return &Feature{service: svc, handler: NewHandler(svc)}
}

// Service returns the feature's service so the command layer can share it.
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "settings"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
