// Package config provides configuration management for the Grid Oracle application.
package config

import (
	"os"
	"strings"
	"testing"
)

const (
	validConfigPath     = "testdata/valid_config.yaml"
	expansionConfigPath = "testdata/expansion_config.yaml"
	nonexistentPath     = "testdata/nonexistent_config.yaml"
)

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.App.Name != "grid-oracle" {
		t.Errorf("expected app name 'grid-oracle', got '%s'", cfg.App.Name)
	}

	if cfg.App.Environment != "development" {
		t.Errorf("expected environment 'development', got '%s'", cfg.App.Environment)
	}

	if cfg.Database.Port != 5432 {
		t.Errorf("expected database port 5432, got %d", cfg.Database.Port)
	}

	if cfg.Simulation.Simulations != 1000 {
		t.Errorf("expected 1000 simulations, got %d", cfg.Simulation.Simulations)
	}
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentPath)
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

// TestLoadConfigEnvironmentVariables tests environment variable override
func TestLoadConfigEnvironmentVariables(t *testing.T) {
	os.Setenv("GRID_ORACLE_APP_NAME", "oracle-test")
	defer os.Unsetenv("GRID_ORACLE_APP_NAME")

	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.App.Name != "oracle-test" {
		t.Errorf("expected app name 'oracle-test' from environment, got '%s'", cfg.App.Name)
	}
}

// TestLoadConfigEnvironmentVariableExpansion tests ${VAR} expansion in the file
func TestLoadConfigEnvironmentVariableExpansion(t *testing.T) {
	os.Setenv("TEST_DB_PASSWORD", "expanded_secret_value")
	defer os.Unsetenv("TEST_DB_PASSWORD")

	cfg, err := Load(expansionConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config with expansion, got %v", err)
	}

	if cfg.Database.Password != "expanded_secret_value" {
		t.Errorf("expected password from environment expansion, got '%s'", cfg.Database.Password)
	}
}

// TestValidateSuccess tests validation of a valid configuration
func TestValidateSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	if err := Validate(cfg); err != nil {
		t.Fatalf("expected no validation error, got %v", err)
	}
}

// TestValidateInvalidEnvironment tests validation of invalid environment
func TestValidateInvalidEnvironment(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	cfg.App.Environment = "invalid"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for invalid environment")
	}
}

// TestValidateInvalidSimMode tests validation of the simulation mode
func TestValidateInvalidSimMode(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	cfg.Simulation.Mode = "quantum"
	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for invalid simulation mode")
	}
	if !strings.Contains(err.Error(), "rank, laps") {
		t.Errorf("expected mode validation message, got: %v", err)
	}
}

// TestValidateInvalidSimulations tests rejection of non-positive simulation counts
func TestValidateInvalidSimulations(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	cfg.Simulation.Simulations = 0
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for zero simulations")
	}
}

// TestValidateFileSourceRequiresPath tests the history cross-field rule
func TestValidateFileSourceRequiresPath(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	cfg.History.Source = "file"
	cfg.History.FilePath = ""
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for file source without path")
	}
}

// TestValidateProductionRequiresSSL tests the production SSL rule
func TestValidateProductionRequiresSSL(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	cfg.App.Environment = "production"
	cfg.Database.SSLMode = "disable"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for disabled SSL in production")
	}
}

// TestGetDatabaseDSN tests DSN generation
func TestGetDatabaseDSN(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	dsn := cfg.GetDatabaseDSN()
	if !strings.HasPrefix(dsn, "postgres://") {
		t.Errorf("expected DSN to start with 'postgres://', got '%s'", dsn)
	}
	if !strings.Contains(dsn, "sslmode=disable") {
		t.Errorf("expected DSN to carry ssl mode, got '%s'", dsn)
	}
}

// TestIsDevelopment tests environment check functions
func TestIsDevelopment(t *testing.T) {
	cfg := &Config{
		App: AppConfig{Environment: "development"},
	}

	if !cfg.IsDevelopment() {
		t.Error("expected IsDevelopment() to return true")
	}

	if cfg.IsProduction() {
		t.Error("expected IsProduction() to return false")
	}
}

// TestIsProduction tests production environment check
func TestIsProduction(t *testing.T) {
	cfg := &Config{
		App: AppConfig{Environment: "production"},
	}

	if !cfg.IsProduction() {
		t.Error("expected IsProduction() to return true")
	}

	if cfg.IsStaging() {
		t.Error("expected IsStaging() to return false")
	}
}

// TestLoadWithDefaults tests that defaults fill a missing file
func TestLoadWithDefaults(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentPath)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.App.Environment != "development" {
		t.Errorf("expected default environment 'development', got '%s'", cfg.App.Environment)
	}
	if cfg.Simulation.Mode != "rank" {
		t.Errorf("expected default mode 'rank', got '%s'", cfg.Simulation.Mode)
	}
	if cfg.Cache.TTLSeconds != 600 {
		t.Errorf("expected default cache TTL 600, got %d", cfg.Cache.TTLSeconds)
	}
}
