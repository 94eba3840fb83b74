package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the root configuration for enats, stored in ~/.enats/config.yaml.
// Every key can be overridden by an ENATS_ environment variable, e.g.
// ENATS_BILLING_HOURLY_RATE=75.
type Config struct {
	Billing   BillingConfig
	Template  TemplateConfig
	Timesheet TimesheetConfig
	Match     MatchConfig
	Output    OutputConfig
	Storage   StorageConfig
	Logger    LoggerConfig
}

// BillingConfig holds invoice settings.
type BillingConfig struct {
	HourlyRate     float64
	CurrencySymbol string
}

// TemplateConfig describes the PHD template layout.
type TemplateConfig struct {
	// DayColOffset is the 0-based column of day 0; day 1 is one to the right.
	DayColOffset int
	// DuplicatePolicy is "soft" (flag repeated client-task rows) or "strict"
	// (reject the template).
	DuplicatePolicy string
	// CheckSheetTotals compares the sheet's own SUM totals after writing.
	CheckSheetTotals bool
}

// TimesheetConfig describes the ENA timesheet layout.
type TimesheetConfig struct {
	ErrorColumn int
}

// MatchConfig tunes key suggestions.
type MatchConfig struct {
	// SuggestionFloor suppresses suggestions scoring below it (0..1).
	SuggestionFloor float64
}

// OutputConfig says where generated files go.
type OutputConfig struct {
	Dir string
}

// StorageConfig says where ledgers are kept.
type StorageConfig struct {
	BaseDir string
}

// LoggerConfig configures the zap logger.
type LoggerConfig struct {
	Level        string
	Encoding     string
	ColorEnabled bool
}

// configTemplate is the annotated config written on first run.
const configTemplate = `# enats configuration - ~/.enats/config.yaml
#
# All settings are optional; the defaults below match the standard ENA
# timesheet and PHD template layouts. Any key can be overridden from the
# environment, e.g. ENATS_BILLING_HOURLY_RATE=75.

billing:
  # Hourly rate used to compute the charge of every entry.
  hourly_rate: 60
  # Prefix for money amounts in the invoice.
  currency_symbol: "$"

template:
  # 0-based column of "day 0" in the PHD template. With 1, day 1 is column C.
  day_col_offset: 1
  # What to do with a repeated client/task pair:
  #   soft   - append " (dup)" to the task so nothing is booked against it
  #   strict - refuse to process the template
  duplicate_policy: soft
  # After writing effort, compare the template's SUM row totals with the model.
  check_sheet_totals: true

timesheet:
  # 0-based column holding error text in the ENA timesheet.
  error_column: 6

match:
  # Minimum similarity (0..1) for "Did you mean ...?" suggestions. 0 always suggests.
  suggestion_floor: 0

output:
  # Where the filled template, invoice and dropdowns are written.
  dir: ~/Downloads

storage:
  # Where monthly ledgers are kept.
  base_dir: ~/.enats

logger:
  # debug, info, warn or error
  level: info
  # console or json
  encoding: console
  # Colored levels when writing to a terminal.
  color_enabled: true
`

func setDefaults(v *viper.Viper) {
	v.SetDefault("billing.hourly_rate", 60.0)
	v.SetDefault("billing.currency_symbol", "$")
	v.SetDefault("template.day_col_offset", 1)
	v.SetDefault("template.duplicate_policy", "soft")
	v.SetDefault("template.check_sheet_totals", true)
	v.SetDefault("timesheet.error_column", 6)
	v.SetDefault("match.suggestion_floor", 0.0)
	v.SetDefault("output.dir", "~/Downloads")
	v.SetDefault("storage.base_dir", "~/.enats")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "console")
	v.SetDefault("logger.color_enabled", true)
}

// DefaultPath returns ~/.enats/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".enats", "config.yaml"), nil
}

// Load reads the config file at path, or ~/.enats/config.yaml when path is
// empty. The default file is created with annotated defaults on first run; an
// explicitly given path must exist. A .env file in the working directory is
// loaded first; variables already set in the environment win.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("ENATS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return fromViper(v)
		}
		path = p
	}
	v.SetConfigFile(path)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if explicit {
			return Config{}, fmt.Errorf("config file %s not found", path)
		}
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		return fromViper(v)
	}
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{}
	cfg.Billing.HourlyRate = v.GetFloat64("billing.hourly_rate")
	cfg.Billing.CurrencySymbol = v.GetString("billing.currency_symbol")
	cfg.Template.DayColOffset = v.GetInt("template.day_col_offset")
	cfg.Template.DuplicatePolicy = v.GetString("template.duplicate_policy")
	cfg.Template.CheckSheetTotals = v.GetBool("template.check_sheet_totals")
	cfg.Timesheet.ErrorColumn = v.GetInt("timesheet.error_column")
	cfg.Match.SuggestionFloor = v.GetFloat64("match.suggestion_floor")
	cfg.Output.Dir = expandHome(v.GetString("output.dir"))
	cfg.Storage.BaseDir = expandHome(v.GetString("storage.base_dir"))
	cfg.Logger.Level = v.GetString("logger.level")
	cfg.Logger.Encoding = v.GetString("logger.encoding")
	cfg.Logger.ColorEnabled = v.GetBool("logger.color_enabled")
	return cfg, cfg.Validate()
}

// Validate rejects settings no run could work with.
func (c Config) Validate() error {
	if c.Billing.HourlyRate <= 0 {
		return fmt.Errorf("billing.hourly_rate must be positive, got %v", c.Billing.HourlyRate)
	}
	if c.Template.DayColOffset < 0 {
		return fmt.Errorf("template.day_col_offset must not be negative, got %d", c.Template.DayColOffset)
	}
	switch c.Template.DuplicatePolicy {
	case "soft", "strict":
	default:
		return fmt.Errorf("template.duplicate_policy must be soft or strict, got %q", c.Template.DuplicatePolicy)
	}
	if c.Timesheet.ErrorColumn < 6 {
		return fmt.Errorf("timesheet.error_column must be 6 or greater, got %d", c.Timesheet.ErrorColumn)
	}
	if c.Match.SuggestionFloor < 0 || c.Match.SuggestionFloor > 1 {
		return fmt.Errorf("match.suggestion_floor must be within 0..1, got %v", c.Match.SuggestionFloor)
	}
	return nil
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
