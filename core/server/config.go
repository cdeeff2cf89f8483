package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// ShutdownTimeoutSeconds bounds graceful shutdown.
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" default:"10"`
}

// Address returns the listen address.
func (c Config) Address() string {
	return ":" + c.Port
}

// Protected reports whether the API requires a key.
func (c Config) Protected() bool {
	return c.ApiKey != ""
}
