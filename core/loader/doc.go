// Package loader provides the plugin-like feature loading system.
//
// Each feature implements the Feature interface, which defines its route
// registration logic:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// # Manager
//
// The Manager holds the registry of features. It handles:
//   - Registration of features via Register()
//   - Loading of enabled features via LoadAll()
//
// The sync and settings features are registered this way by the start command.
package loader
