// Package config loads golox settings from YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectFile is the per-directory config file name.
const ProjectFile = ".lox.yaml"

// Config holds user-tunable settings for the CLI and REPL.
type Config struct {
	Prompt          string `yaml:"prompt"`
	HistoryFile     string `yaml:"history_file"`
	Pretty          bool   `yaml:"pretty"`
	LogLevel        string `yaml:"log_level"`
	Trace           bool   `yaml:"trace"`
	EchoExpressions bool   `yaml:"echo_expressions"`

	// Path is the file the settings were read from; empty for defaults.
	Path string `yaml:"-"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Prompt:          "> ",
		HistoryFile:     ".lox_history",
		Pretty:          true,
		LogLevel:        "warn",
		EchoExpressions: true,
	}
}

// Load reads settings for projectDir.
// Precedence: project (.lox.yaml) → user (~/.config/lox/config.yaml) → defaults.
// The first file found wins; a file that exists but is invalid is an error.
func Load(projectDir string) (*Config, error) {
	cfg, err := LoadFile(filepath.Join(projectDir, ProjectFile))
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if path, ok := userPath(); ok {
		cfg, err := LoadFile(path)
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return Default(), nil
}

func userPath() (string, bool) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(homeDir, ".config", "lox", "config.yaml"), true
}

// LoadFile parses a single config file. Keys it omits keep their defaults;
// unknown keys are rejected.
func LoadFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cfg := Default()
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level converts LogLevel into a slog level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Encode writes the settings as YAML.
func (c *Config) Encode(w io.Writer) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("config: encoder close: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
