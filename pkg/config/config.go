package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Database configuration
	Database DatabaseConfig `mapstructure:"database"`

	// Presets configuration
	Presets PresetsConfig `mapstructure:"presets"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	// Path is the SQLite database file, or ":memory:" for an in-memory store
	Path string `mapstructure:"path"`
}

// PresetsConfig holds filter preset storage configuration
type PresetsConfig struct {
	// Dir is the Badger directory for stored presets; empty means in-memory
	Dir string `mapstructure:"dir"`

	// SeedFile is an optional YAML file of presets loaded at startup
	SeedFile string `mapstructure:"seed_file"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	ParquetPath string `mapstructure:"parquet_path"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	setDefaults()

	viper.SetEnvPrefix("ISOMETRY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".isometry")

	// Database defaults
	viper.SetDefault("database.path", filepath.Join(base, "isometry.db"))

	// Preset store defaults
	viper.SetDefault("presets.dir", filepath.Join(base, "presets"))
	viper.SetDefault("presets.seed_file", "")

	// Telemetry defaults
	viper.SetDefault("telemetry.parquet_path", filepath.Join(base, "telemetry"))
}
