package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Orders   OrdersConfig   `yaml:"orders"`
	LogLevel string         `yaml:"log_level"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret"`
	ExpirySeconds int    `yaml:"expiry_seconds"`
}

type OrdersConfig struct {
	// StatusPolicy names whether a station may move backward after an
	// operator misclick: "forward_only" or "reversible".
	StatusPolicy string `yaml:"status_policy"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads the YAML config at path and applies environment-variable
// overrides on top. A missing file is not an error; defaults plus the
// environment then fully describe the configuration.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Server:   ServerConfig{Port: 8080},
		Database: DatabaseConfig{Path: "mesob.db"},
		Auth:     AuthConfig{ExpirySeconds: 86400},
		Orders:   OrdersConfig{StatusPolicy: "forward_only"},
		LogLevel: "info",
		Metrics:  MetricsConfig{Enabled: true, Port: 9090},
	}

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg.Server.Port = getEnvInt("PORT", cfg.Server.Port)
	cfg.Database.Path = getEnv("DATABASE_PATH", cfg.Database.Path)
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.ExpirySeconds = getEnvInt("JWT_EXPIRES_IN_SECONDS", cfg.Auth.ExpirySeconds)
	cfg.Orders.StatusPolicy = getEnv("ORDER_STATUS_POLICY", cfg.Orders.StatusPolicy)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.Metrics.Port = getEnvInt("METRICS_PORT", cfg.Metrics.Port)

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not configured")
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
