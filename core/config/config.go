package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"guild-sync/core/bot"
	"guild-sync/core/database"
	"guild-sync/core/donor"
	"guild-sync/core/identity"
	"guild-sync/core/logger"
	"guild-sync/core/reconcile"
	"guild-sync/core/server"
	"guild-sync/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the sweep report archive.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the policy store.
	Database database.Config `mapstructure:"database"`
	// Bot holds configuration for the Discord session.
	Bot bot.Config `mapstructure:"bot"`
	// Identity holds configuration for the identity service client.
	Identity identity.Config `mapstructure:"identity"`
	// Sync holds configuration for the reconcile engine.
	Sync reconcile.Config `mapstructure:"sync"`
	// Donor is the donor community and its role alias table.
	Donor donor.Config `mapstructure:"donor"`
}

// LoadConfig loads configuration from environment variables, the .env file
// and an optional config.yaml in path. The donor section is validated.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SERVER_PORT -> server.port)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 2. Merge config.yaml; the donor role table is a list and lives there
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Donor.Validate(); err != nil {
		return nil, fmt.Errorf("invalid donor configuration: %w", err)
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		switch field.Type.Kind() {
		case reflect.Struct:
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		case reflect.Slice, reflect.Map:
			// Lists come from config.yaml only
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
