// Package config loads application configuration from the environment with
// an optional config.yaml next to the binary.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds database connection settings. An empty URL selects
// the in-memory storage.
type DatabaseConfig struct {
	URL string
}

// LogConfig holds log sink settings. An empty File selects the console
// fallback.
type LogConfig struct {
	File  string
	Level string // debug, info, warn, error
}

// Load reads configuration from config.yaml (if present) and the
// environment. Environment variables use the CART prefix with underscores,
// e.g. CART_DATABASE_URL.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", "8081")
	v.SetDefault("database.url", "")
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return &Config{
		Server: ServerConfig{
			Port: v.GetString("server.port"),
		},
		Database: DatabaseConfig{
			URL: v.GetString("database.url"),
		},
		Log: LogConfig{
			File:  v.GetString("log.file"),
			Level: v.GetString("log.level"),
		},
	}, nil
}
