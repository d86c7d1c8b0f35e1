// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/evobench/internal/schemas"
	"github.com/jonathan/evobench/internal/types"
)

// Settings holds the per-run engine and deadline options. Timeouts are given
// in seconds; zero means unbounded.
type Settings struct {
	NJobs       int     `json:"n_jobs,omitempty" validate:"omitempty,gte=1"`
	Timeout     float64 `json:"timeout,omitempty" validate:"omitempty,gt=0"`
	TaskTimeout float64 `json:"task_timeout,omitempty" validate:"omitempty,gt=0"`
	MaxHeight   int     `json:"max_height,omitempty" validate:"omitempty,gte=1"`
}

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via
// CLI flags.
type Config struct {
	TaskIDs     []int64  `json:"task_ids,omitempty" validate:"omitempty,dive,gte=1"`
	Settings    Settings `json:"settings,omitempty"`
	Suite       string   `json:"suite,omitempty"`
	Out         string   `json:"out,omitempty"`
	DataDir     string   `json:"data_dir,omitempty"`
	Engine      string   `json:"engine,omitempty"`
	DatabaseURL string   `json:"database_url,omitempty"`
	Verbose     bool     `json:"verbose,omitempty"`
}

// LoadConfig loads configuration from a JSON file, validating it against the
// run configuration schema when the schema file can be located.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// schema validation catches misspelled keys and wrong types before the
	// looser json.Unmarshal does its best-effort decode
	if schemaPath := schemas.ResolveSchemaPath(schemas.RunConfigSchema); schemaPath != "" {
		if err := schemas.ValidateBytes(schemaPath, data); err != nil {
			return nil, fmt.Errorf("config file %s is invalid: %w", path, err)
		}
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values. Required fields
// are not checked here; those are enforced by CLI flag validation after
// merging.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// MergeWithDefaults returns a new Config with unset fields filled from
// defaults. This is used to apply config file values as defaults for CLI
// flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if len(result.TaskIDs) == 0 {
		result.TaskIDs = defaults.TaskIDs
	}
	if result.Suite == "" {
		result.Suite = defaults.Suite
	}
	if result.Out == "" {
		result.Out = defaults.Out
	}
	if result.DataDir == "" {
		result.DataDir = defaults.DataDir
	}
	if result.Engine == "" {
		result.Engine = defaults.Engine
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if !result.Verbose {
		result.Verbose = defaults.Verbose
	}

	if result.Settings.NJobs == 0 {
		result.Settings.NJobs = defaults.Settings.NJobs
	}
	if result.Settings.Timeout == 0 {
		result.Settings.Timeout = defaults.Settings.Timeout
	}
	if result.Settings.TaskTimeout == 0 {
		result.Settings.TaskTimeout = defaults.Settings.TaskTimeout
	}
	if result.Settings.MaxHeight == 0 {
		result.Settings.MaxHeight = defaults.Settings.MaxHeight
	}

	return result
}

// RunConfig converts the settings into the runner's representation,
// translating second-valued timeouts into durations.
func (c *Config) RunConfig() types.RunConfig {
	return types.RunConfig{
		NJobs:       c.Settings.NJobs,
		Timeout:     time.Duration(c.Settings.Timeout * float64(time.Second)),
		TaskTimeout: time.Duration(c.Settings.TaskTimeout * float64(time.Second)),
		MaxHeight:   c.Settings.MaxHeight,
	}.WithDefaults()
}
