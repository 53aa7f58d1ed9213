package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Filename is the optional configuration file read from the project root.
const Filename = ".ghostci.yml"

// Config captures pipeline options sourced from the config file or flags.
type Config struct {
	Python           string        `yaml:"python"`
	Timeout          time.Duration `yaml:"timeout"`
	ReportFile       string        `yaml:"report_file"`
	TestDependencies []string      `yaml:"test_dependencies"`
	Verbose          bool          `yaml:"verbose"`

	Lint LintConfig `yaml:"lint"`
	Log  LogConfig  `yaml:"log"`
}

// LintConfig tunes the style checker.
type LintConfig struct {
	MaxLineLength int      `yaml:"max_line_length"`
	Ignore        []string `yaml:"ignore"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the baseline configuration used when no flags or config file specify values.
func Default() Config {
	return Config{
		Python:     "python3",
		Timeout:    5 * time.Minute,
		ReportFile: "test-report.json",
		TestDependencies: []string{
			"pytest>=7.0.0",
			"pytest-cov>=4.0.0",
			"pytest-mock>=3.10.0",
			"requests-mock>=1.10.0",
			"coverage>=7.0.0",
		},
		Lint: LintConfig{
			MaxLineLength: 88,
			Ignore:        []string{"E203", "W503"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads .ghostci.yml from the project root when present. Missing files are ignored.
func Load(root string) (Config, error) {
	cfg := Default()
	path := filepath.Join(root, Filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	if err := fileCfg.validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %q: %w", path, err)
	}

	return merge(cfg, fileCfg), nil
}

func (c Config) validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Lint.MaxLineLength < 0 {
		return fmt.Errorf("lint.max_line_length must be positive, got %d", c.Lint.MaxLineLength)
	}
	if filepath.IsAbs(c.ReportFile) {
		return fmt.Errorf("report_file must be relative to the project root, got %q", c.ReportFile)
	}
	return nil
}

func merge(base, override Config) Config {
	out := base

	if override.Python != "" {
		out.Python = override.Python
	}
	if override.Timeout > 0 {
		out.Timeout = override.Timeout
	}
	if override.ReportFile != "" {
		out.ReportFile = override.ReportFile
	}
	if len(override.TestDependencies) > 0 {
		out.TestDependencies = append([]string{}, override.TestDependencies...)
	}
	if override.Verbose {
		out.Verbose = true
	}
	if override.Lint.MaxLineLength > 0 {
		out.Lint.MaxLineLength = override.Lint.MaxLineLength
	}
	if override.Lint.Ignore != nil {
		out.Lint.Ignore = append([]string{}, override.Lint.Ignore...)
	}
	if override.Log.Level != "" {
		out.Log.Level = override.Log.Level
	}
	if override.Log.Format != "" {
		out.Log.Format = override.Log.Format
	}

	return out
}

// ApplyFlags mutates cfg by applying values from CLI flags when they are present.
func ApplyFlags(cfg *Config, flags FlagValues) {
	if flags.Python.Set {
		cfg.Python = flags.Python.Value
	}
	if flags.Timeout.Set {
		cfg.Timeout = flags.Timeout.Value
	}
	if flags.ReportFile.Set {
		cfg.ReportFile = flags.ReportFile.Value
	}
	if flags.Verbose.Set {
		cfg.Verbose = flags.Verbose.Value
	}
	if flags.LogLevel.Set {
		cfg.Log.Level = flags.LogLevel.Value
	}
	if flags.LogFormat.Set {
		cfg.Log.Format = flags.LogFormat.Value
	}
}

// FlagValues captures CLI flag state with knowledge of whether each flag was set explicitly.
type FlagValues struct {
	Python     StringFlag
	Timeout    DurationFlag
	ReportFile StringFlag
	Verbose    BoolFlag
	LogLevel   StringFlag
	LogFormat  StringFlag
}

// StringFlag represents a string flag and whether it was set.
type StringFlag struct {
	Value string
	Set   bool
}

// DurationFlag represents a duration flag and whether it was set.
type DurationFlag struct {
	Value time.Duration
	Set   bool
}

// BoolFlag represents a bool flag and whether it was set.
type BoolFlag struct {
	Value bool
	Set   bool
}
