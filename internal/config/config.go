// =============================================================================
// Price Export - Configuration Module
// =============================================================================
//
// This module is responsible for loading the export configuration. The
// configuration is a single YAML document listing the products (and
// optionally the stores) to export, plus output and CSV settings.
//
// CONFIGURATION FILE (product_ids.yaml):
//   destination:   prices.csv
//   keep_backups:  true
//   csv_separator: ","
//   csv_quote:     "|"
//   product_ids:   [438457, 18]
//   store_ids:     [511]
//
// LOADING FLOW:
//   1. Read the YAML file (missing file is fatal)
//   2. Apply environment overrides (.env supported)
//   3. Apply default values
//   4. Validate
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrConfiguration is wrapped by every error returned from Load.
var ErrConfiguration = errors.New("configuration error")

// Output formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Environment variables that override values from the YAML document.
const (
	EnvAPIBaseURL = "PRICE_EXPORT_API_BASE_URL"
	EnvDataDir    = "PRICE_EXPORT_DATA_DIR"
	EnvLogLevel   = "PRICE_EXPORT_LOG_LEVEL"
)

// DefaultPath is the configuration file read when --config is not given.
const DefaultPath = "product_ids.yaml"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the export configuration. It is read once per run and never
// mutated afterwards.
type Config struct {
	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// Destination is the output file. Relative paths are resolved inside
	// DataDir.
	// Default: "prices.csv"
	Destination string `yaml:"destination"`

	// DataDir is the directory holding the output file and its backups.
	// It is created if it does not exist.
	// Default: "data"
	DataDir string `yaml:"data_dir"`

	// KeepBackups moves an existing output file aside before overwriting it.
	// A pointer so that an explicit "false" can be told apart from absence.
	// Default: true
	KeepBackups *bool `yaml:"keep_backups"`

	// OutputFormat selects the exporter: "csv" or "xlsx".
	// Default: "csv"
	OutputFormat string `yaml:"output_format"`

	// =========================================================================
	// CSV SETTINGS
	// =========================================================================

	// CSVSeparator is the field delimiter. Must be exactly one character.
	// Default: ","
	CSVSeparator string `yaml:"csv_separator"`

	// CSVQuote quotes every non-numeric field. Must be exactly one character.
	// Default: "|"
	CSVQuote string `yaml:"csv_quote"`

	// =========================================================================
	// CATALOG SETTINGS
	// =========================================================================

	// ProductIDs lists the products to export, in output order.
	// Duplicates are kept.
	ProductIDs []string `yaml:"product_ids"`

	// StoreIDs lists the stores whose on-hand quantity is exported.
	// Empty disables inventory lookups.
	StoreIDs []string `yaml:"store_ids"`

	// KeepMissing keeps products whose lookup failed as placeholder rows
	// instead of dropping them.
	// Default: false
	KeepMissing bool `yaml:"keep_missing"`

	// =========================================================================
	// REMOTE SERVICE SETTINGS
	// =========================================================================

	// APIBaseURL is the product-information service root.
	// Default: "http://lcboapi.com"
	APIBaseURL string `yaml:"api_base_url"`

	// RequestTimeout bounds each HTTP request. "0s" disables the bound.
	// Default: "30s"
	RequestTimeout string `yaml:"request_timeout"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// resolved values, filled in by validate.
	separator rune
	quote     rune
	timeout   time.Duration
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Separator returns the validated field delimiter.
func (c *Config) Separator() rune { return c.separator }

// Quote returns the validated quote character.
func (c *Config) Quote() rune { return c.quote }

// Timeout returns the parsed request timeout. Zero means unbounded.
func (c *Config) Timeout() time.Duration { return c.timeout }

// Backups reports whether an existing output file is moved aside first.
func (c *Config) Backups() bool { return c.KeepBackups == nil || *c.KeepBackups }

// InventoryEnabled reports whether any store is configured.
func (c *Config) InventoryEnabled() bool { return len(c.StoreIDs) > 0 }

// DestinationPath returns the output path with DataDir applied.
func (c *Config) DestinationPath() string {
	if filepath.IsAbs(c.Destination) {
		return c.Destination
	}
	return filepath.Join(c.DataDir, c.Destination)
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load reads the configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the configuration file.
//
// RETURNS:
//   - A pointer to the validated Config.
//   - An error wrapping ErrConfiguration if the file cannot be read, parsed
//     or validated.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %w", ErrConfiguration, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// Parse builds a Config from a YAML document. Environment overrides are
// applied, then defaults, then validation.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config file: %w", ErrConfiguration, err)
	}

	applyEnvOverrides(&config)
	applyDefaults(&config)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	return &config, nil
}

// LoadEnvFile loads variables from a .env file into the process environment.
// A missing file is not an error; variables already set are not replaced.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%w: failed to load %s: %w", ErrConfiguration, path, err)
	}
	return nil
}

// applyEnvOverrides replaces values with non-empty environment variables.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv(EnvAPIBaseURL); v != "" {
		config.APIBaseURL = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		config.DataDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		config.LogLevel = v
	}
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(config *Config) {
	if config.Destination == "" {
		config.Destination = "prices.csv"
	}
	if config.DataDir == "" {
		config.DataDir = "data"
	}
	if config.KeepBackups == nil {
		keep := true
		config.KeepBackups = &keep
	}
	if config.OutputFormat == "" {
		config.OutputFormat = FormatCSV
	}
	if config.CSVSeparator == "" {
		config.CSVSeparator = ","
	}
	if config.CSVQuote == "" {
		config.CSVQuote = "|"
	}
	if config.APIBaseURL == "" {
		config.APIBaseURL = "http://lcboapi.com"
	}
	if config.RequestTimeout == "" {
		config.RequestTimeout = "30s"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
}

// validate checks the configuration and fills in the resolved fields.
func validate(config *Config) error {
	sep, err := singleRune("csv_separator", strings.TrimSpace(config.CSVSeparator))
	if err != nil {
		// A lone tab or space is trimmed away above; accept it untrimmed.
		if sep, err = singleRune("csv_separator", config.CSVSeparator); err != nil {
			return err
		}
	}
	quote, err := singleRune("csv_quote", config.CSVQuote)
	if err != nil {
		return err
	}
	if sep == quote {
		return fmt.Errorf("csv_separator and csv_quote must differ, both are %q", sep)
	}
	if sep == '\n' || sep == '\r' || quote == '\n' || quote == '\r' {
		return fmt.Errorf("csv_separator and csv_quote must not be line breaks")
	}
	if numericRune(sep) {
		return fmt.Errorf("csv_separator %q would split numeric fields", sep)
	}
	if numericRune(quote) {
		return fmt.Errorf("csv_quote %q would clash with numeric fields", quote)
	}

	timeout, err := time.ParseDuration(config.RequestTimeout)
	if err != nil {
		return fmt.Errorf("invalid request_timeout %q: %w", config.RequestTimeout, err)
	}
	if timeout < 0 {
		return fmt.Errorf("request_timeout must not be negative, got %s", timeout)
	}

	switch config.OutputFormat {
	case FormatCSV, FormatXLSX:
	default:
		return fmt.Errorf("unknown output_format %q (want %q or %q)", config.OutputFormat, FormatCSV, FormatXLSX)
	}

	for i, id := range config.ProductIDs {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("product_ids[%d] is empty", i)
		}
	}
	for i, id := range config.StoreIDs {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("store_ids[%d] is empty", i)
		}
	}

	config.separator = sep
	config.quote = quote
	config.timeout = timeout
	return nil
}

// singleRune returns the only rune of value, or an error naming the key.
func singleRune(key, value string) (rune, error) {
	if utf8.RuneCountInString(value) != 1 {
		return 0, fmt.Errorf("%s must be exactly one character, got %q", key, value)
	}
	r, _ := utf8.DecodeRuneInString(value)
	return r, nil
}

// numericRune reports whether r can appear in a bare numeric field.
func numericRune(r rune) bool {
	return (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '+'
}
