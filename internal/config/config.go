// Package config loads the salin configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up in the working directory when no
// path is given.
const DefaultFile = "salin.yaml"

// Config is the complete salin configuration.
type Config struct {
	// Dictionary is the path of the dictionary resource.
	Dictionary string `yaml:"dictionary"`
	// Actions is the path of the action table resource.
	Actions string `yaml:"actions"`
	// Grammar is the path of the grammar resource.
	Grammar string `yaml:"grammar"`
	// MinMatch is the matcher threshold used when a command does not set one.
	MinMatch int `yaml:"min_match"`
	// Normalize makes word lookups compare NFC forms.
	Normalize bool `yaml:"normalize"`
	// History is an optional SQLite path for recording match runs.
	History string `yaml:"history"`
	// LogLevel is a zap level name: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns a Config with the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Dictionary: "dics.json",
		Actions:    "actions.json",
		Grammar:    "grammars.json",
		MinMatch:   5,
		Normalize:  true,
		LogLevel:   "warn",
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Dictionary == "" {
		return fmt.Errorf("dictionary is required")
	}
	if c.Actions == "" {
		return fmt.Errorf("actions is required")
	}
	if c.Grammar == "" {
		return fmt.Errorf("grammar is required")
	}
	if c.MinMatch < 0 {
		return fmt.Errorf("min_match must not be negative, got %d", c.MinMatch)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (zapcore.Level, error) {
	if c.LogLevel == "" {
		return zapcore.WarnLevel, nil
	}
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.WarnLevel, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}

// LoadFromFile loads configuration from a YAML file. Fields the file omits
// keep their defaults. Relative resource paths are resolved against the
// file's directory.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.resolve(filepath.Dir(path))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Load loads path when it is set. With an empty path it tries DefaultFile in
// the working directory and falls back to the defaults when that file does
// not exist.
func Load(path string) (*Config, error) {
	if path != "" {
		return LoadFromFile(path)
	}
	cfg, err := LoadFromFile(DefaultFile)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

// SaveToFile writes the configuration as YAML.
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) resolve(dir string) {
	for _, p := range []*string{&c.Dictionary, &c.Actions, &c.Grammar, &c.History} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}
