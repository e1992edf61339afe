// Package config provides invoker configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/hyg/voucher-invoker/pkg/semver"
)

const logPrefix = "config:LoadConfig"

// DefaultEnvFile is loaded when INVOKER_ENV_FILE is unset.
const DefaultEnvFile = ".env"

// Config holds voucher-invoker configuration.
type Config struct {
	// EnvFile is a dotenv file loaded before the environment is read. A missing file is ignored.
	EnvFile string `envconfig:"INVOKER_ENV_FILE" default:".env"`

	// OutputDir receives extraction output when no output file is given (empty = <tmp>/voucher-invoker).
	OutputDir string `envconfig:"INVOKER_OUTPUT_DIR"`
	// TaxonomyFile overrides the built-in taxonomy table.
	TaxonomyFile string `envconfig:"INVOKER_TAXONOMY_FILE"`

	// Version gates
	FacilityVersion string `envconfig:"INVOKER_FACILITY_VERSION" default:"^1.0.0"`
	OFDVersion      string `envconfig:"INVOKER_OFD_VERSION" default:">=1.0"`

	// PDFMaxBytes bounds the PDF size read into memory for page-text scanning.
	PDFMaxBytes int64 `envconfig:"INVOKER_PDF_MAX_BYTES" default:"67108864"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// LoadConfig loads the dotenv file, then configuration from environment variables.
// Variables already set in the environment win over the dotenv file.
func LoadConfig() (*Config, error) {
	envFile := os.Getenv("INVOKER_ENV_FILE")
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("%s - failed to load %s: %w", logPrefix, envFile, err)
	}

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks version constraints, sizes and logging options.
// Logging options are normalized to lower case; trace and warning are accepted as debug and warn.
func (c *Config) Validate() error {
	if err := semver.ValidateRange(c.FacilityVersion); err != nil {
		return fmt.Errorf("%s - INVOKER_FACILITY_VERSION: %w", logPrefix, err)
	}
	if err := semver.ValidateRange(c.OFDVersion); err != nil {
		return fmt.Errorf("%s - INVOKER_OFD_VERSION: %w", logPrefix, err)
	}
	if c.PDFMaxBytes <= 0 {
		return fmt.Errorf("%s - INVOKER_PDF_MAX_BYTES must be positive", logPrefix)
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	switch c.LogLevel {
	case "trace":
		c.LogLevel = "debug"
	case "warning":
		c.LogLevel = "warn"
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%s - LOG_LEVEL must be debug, info, warn or error, got %q", logPrefix, c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%s - LOG_FORMAT must be text or json, got %q", logPrefix, c.LogFormat)
	}
	return nil
}
