package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/andy/billcalc/internal/logger"
	"github.com/andy/billcalc/internal/pricing"
)

// Environment variables that override file settings.
const (
	EnvConfigPath = "BILLCALC_CONFIG"
	EnvWorkbook   = "BILLCALC_WORKBOOK"
	EnvLogLevel   = "LOG_LEVEL"
	EnvLogFormat  = "LOG_FORMAT"
)

type Config struct {
	// Calculation rules
	Calculation CalculationConfig `yaml:"calculation"`

	// Input data
	Data DataConfig `yaml:"data"`

	// Logging
	Logger LoggerConfig `yaml:"logger"`
}

type CalculationConfig struct {
	// Reject documents whose total goes below zero when false
	AllowNegativeTotals bool `yaml:"allow_negative_totals"`
	// Slack for allocation checks (0.01 = one cent)
	AllocationTolerance float64 `yaml:"allocation_tolerance" validate:"gte=0,lte=1"`
	// Digits used when a document currency is unknown
	DefaultPrecision int `yaml:"default_precision" validate:"gte=0,lte=8"`
	// Currency payments are reported in; 0 disables
	BaseCurrencyID int64 `yaml:"base_currency_id" validate:"gte=0"`
}

type DataConfig struct {
	WorkbookPath string `yaml:"workbook_path" validate:"required"` // YAML catalogue of currencies, taxes, firms and invoices
}

type LoggerConfig struct {
	Level      string `yaml:"level" validate:"oneof=trace debug info warn error"`
	Format     string `yaml:"format" validate:"oneof=console json"`
	TimeFormat string `yaml:"time_format"`
	Output     string `yaml:"output"` // stdout, stderr, or file path
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultConfigPath returns ~/.config/billcalc/config.yaml
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir unavailable
		return filepath.Join(".", ".config", "billcalc", "config.yaml")
	}
	return filepath.Join(homeDir, ".config", "billcalc", "config.yaml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	def := logger.DefaultConfig()
	return &Config{
		Calculation: CalculationConfig{
			AllowNegativeTotals: false,
			AllocationTolerance: 0.01,
			DefaultPrecision:    3,
			BaseCurrencyID:      0,
		},
		Data: DataConfig{
			WorkbookPath: filepath.Join(homeDir, ".config", "billcalc", "workbook.yaml"),
		},
		Logger: LoggerConfig{
			Level:      def.Level,
			Format:     def.Format,
			TimeFormat: def.TimeFormat,
			Output:     def.Output,
		},
	}
}

// Load loads config from the given path, or returns defaults if file doesn't exist
func Load(path string) (*Config, error) {
	// If file doesn't exist, return defaults
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return cfg, nil
}

// LoadDefault loads from $BILLCALC_CONFIG or the default config path, then
// applies environment overrides and validates the result.
func LoadDefault() (*Config, error) {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		path = DefaultConfigPath()
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from the environment
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvWorkbook); v != "" {
		c.Data.WorkbookPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logger.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logger.Format = v
	}
}

// Validate returns an error if a setting is out of range
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// EnsureDirectories creates the directory holding the workbook
func (c *Config) EnsureDirectories() error {
	return os.MkdirAll(filepath.Dir(c.Data.WorkbookPath), 0755)
}

// Tolerance returns the allocation tolerance as an exact decimal
func (c *Config) Tolerance() decimal.Decimal {
	return decimal.NewFromFloat(c.Calculation.AllocationTolerance)
}

// Policy returns the aggregation policy
func (c *Config) Policy() pricing.Policy {
	return pricing.Policy{AllowNegativeTotals: c.Calculation.AllowNegativeTotals}
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.Logger.Level,
		Format:     c.Logger.Format,
		TimeFormat: c.Logger.TimeFormat,
		Output:     c.Logger.Output,
	}
}
