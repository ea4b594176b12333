package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/locdiff/pkg/filter"
	"github.com/Sumatoshi-tech/locdiff/pkg/languages"
	"github.com/Sumatoshi-tech/locdiff/pkg/render"
	"github.com/Sumatoshi-tech/locdiff/pkg/safeconv"
)

// Config is the top-level configuration struct for locdiff.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Filter    FilterConfig    `mapstructure:"filter"`
	Languages LanguagesConfig `mapstructure:"languages"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Output    OutputConfig    `mapstructure:"output"`
	Log       LogConfig       `mapstructure:"log"`
}

// FilterConfig holds file eligibility settings.
type FilterConfig struct {
	IgnorePatterns   []string `mapstructure:"ignore_patterns"`
	NoDefaultIgnores bool     `mapstructure:"no_default_ignores"`
	MaxFileSize      string   `mapstructure:"max_file_size"`
	SkipVendored     bool     `mapstructure:"skip_vendored"`
}

// LanguagesConfig holds registry customizations.
type LanguagesConfig struct {
	// Overrides maps an extension, written without the leading dot since viper
	// splits keys on dots, to a registered language name.
	Overrides map[string]string `mapstructure:"overrides"`
	// Include restricts counting to these languages when non-empty.
	Include []string `mapstructure:"include"`
}

// AnalysisConfig holds run settings.
type AnalysisConfig struct {
	Workers  int    `mapstructure:"workers"`
	Timeout  string `mapstructure:"timeout"`
	FailFast bool   `mapstructure:"fail_fast"`
	Churn    bool   `mapstructure:"churn"`
}

// OutputConfig holds presentation settings.
type OutputConfig struct {
	Format    string `mapstructure:"format"`
	ShowFiles bool   `mapstructure:"show_files"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// Sentinel errors for configuration validation.
var (
	// ErrInvalidWorkers indicates the workers value is negative.
	ErrInvalidWorkers = errors.New("analysis.workers must be non-negative")
	// ErrInvalidTimeout indicates the timeout is not a positive duration.
	ErrInvalidTimeout = errors.New("analysis.timeout must be a positive duration")
	// ErrInvalidMaxFileSize indicates the size limit cannot be parsed.
	ErrInvalidMaxFileSize = errors.New("filter.max_file_size must be a byte size such as 10MB")
	// ErrInvalidLogLevel indicates an unknown log level.
	ErrInvalidLogLevel = errors.New("log.level must be one of debug, info, warn, error")
	// ErrUnknownLanguage indicates an override or allow-list names an unregistered language.
	ErrUnknownLanguage = errors.New("unknown language")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if c.Analysis.Workers < 0 {
		return ErrInvalidWorkers
	}

	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}

	if _, err := c.MaxFileSizeBytes(); err != nil {
		return err
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	if c.Output.Format != "" {
		if err := render.ValidateFormat(c.Output.Format); err != nil {
			return err
		}
	}

	return nil
}

// TimeoutDuration parses analysis.timeout. Empty means no timeout.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Analysis.Timeout == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(c.Analysis.Timeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeout, c.Analysis.Timeout)
	}

	return d, nil
}

// MaxFileSizeBytes parses filter.max_file_size. Empty or "0" disables the limit.
func (c *Config) MaxFileSizeBytes() (int64, error) {
	trimmed := strings.TrimSpace(c.Filter.MaxFileSize)
	if trimmed == "" || trimmed == "0" {
		return 0, nil
	}

	size, err := humanize.ParseBytes(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMaxFileSize, c.Filter.MaxFileSize)
	}

	n, err := safeconv.Uint64ToInt64(size)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidMaxFileSize, err)
	}

	return n, nil
}

// SlogLevel parses log.level.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}
}

// FilterOptions converts the filter section.
func (c *Config) FilterOptions() (filter.Options, error) {
	size, err := c.MaxFileSizeBytes()
	if err != nil {
		return filter.Options{}, err
	}

	return filter.Options{
		IgnorePatterns:   c.Filter.IgnorePatterns,
		NoDefaultIgnores: c.Filter.NoDefaultIgnores,
		MaxFileSize:      size,
		SkipVendored:     c.Filter.SkipVendored,
	}, nil
}

// Registry builds the default language registry with overrides applied.
// Allow-list names are checked against it.
func (c *Config) Registry() (*languages.Registry, error) {
	reg := languages.Default()

	for ext, lang := range c.Languages.Overrides {
		err := reg.Override(ext, lang)
		if err != nil {
			return nil, fmt.Errorf("languages.overrides %s: %w", ext, err)
		}
	}

	for _, name := range c.Languages.Include {
		if name == languages.PlainText {
			continue
		}

		if _, ok := reg.Lookup(name); !ok {
			return nil, fmt.Errorf("languages.include: %w: %q", ErrUnknownLanguage, name)
		}
	}

	return reg, nil
}
