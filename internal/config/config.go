// Package config provides configuration management for the Grid Oracle application.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Simulation SimulationConfig `mapstructure:"simulation" validate:"required"`
	History    HistoryConfig    `mapstructure:"history" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler" validate:"required"`
	Cache      CacheConfig      `mapstructure:"cache" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// SimulationConfig represents default Monte Carlo engine settings. Per-call
// options override these.
type SimulationConfig struct {
	Simulations   int    `mapstructure:"simulations" validate:"required,gt=0"`
	Laps          int    `mapstructure:"laps" validate:"required,gt=0"`
	Workers       int    `mapstructure:"workers" validate:"required,gt=0"`
	Mode          string `mapstructure:"mode" validate:"required,simmode"`
	AllowFallback bool   `mapstructure:"allow_fallback"`
	Seed          int64  `mapstructure:"seed"`
}

// HistoryConfig represents the historical results data source
type HistoryConfig struct {
	Source            string `mapstructure:"source" validate:"required,oneof=file http"`
	FilePath          string `mapstructure:"file_path"`
	BaseURL           string `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey            string `mapstructure:"api_key"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts     int    `mapstructure:"retry_attempts" validate:"gte=0"`
	RequestsPerSecond int    `mapstructure:"requests_per_second" validate:"required,gt=0"`
	Seasons           []int  `mapstructure:"seasons" validate:"required,min=1"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// SchedulerConfig represents the rating refresh schedule
type SchedulerConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	RefreshSchedule string `mapstructure:"refresh_schedule" validate:"required"`
}

// CacheConfig represents the forecast cache
type CacheConfig struct {
	TTLSeconds      int `mapstructure:"ttl_seconds" validate:"required,gt=0"`
	CleanupInterval int `mapstructure:"cleanup_interval_seconds" validate:"required,gt=0"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
