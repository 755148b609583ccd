// Package config loads user settings and builds the Session shared by the
// command line and the desktop shell.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. PARQCEL_PAGE_SIZE.
const EnvPrefix = "PARQCEL"

// Config is the user configuration.
type Config struct {
	PageSize       int    `mapstructure:"page_size" yaml:"page_size"`
	HistoryLimit   int    `mapstructure:"history_limit" yaml:"history_limit"`
	CSVDetectDates bool   `mapstructure:"csv_detect_dates" yaml:"csv_detect_dates"`
	CSVDelimiter   string `mapstructure:"csv_delimiter" yaml:"csv_delimiter"`
	APITimeoutSec  int    `mapstructure:"api_timeout_sec" yaml:"api_timeout_sec"`
	Debug          bool   `mapstructure:"debug" yaml:"debug"`
	Theme          string `mapstructure:"theme" yaml:"theme"`

	// Assistant
	AssistantBackend string `mapstructure:"assistant_backend" yaml:"assistant_backend"`
	OllamaHost       string `mapstructure:"ollama_host" yaml:"ollama_host"`
	OllamaModel      string `mapstructure:"ollama_model" yaml:"ollama_model"`

	// Sandbox
	SandboxTimeoutSec int `mapstructure:"sandbox_timeout_sec" yaml:"sandbox_timeout_sec"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		PageSize:          10000,
		HistoryLimit:      100,
		APITimeoutSec:     60,
		Theme:             "light",
		AssistantBackend:  "rules",
		OllamaHost:        "http://127.0.0.1:11434",
		OllamaModel:       "llama3",
		SandboxTimeoutSec: 30,
	}
}

// DefaultPath returns ~/.parqcel/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".parqcel", "config.yaml"), nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. A missing file is not an error.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("page_size", d.PageSize)
	v.SetDefault("history_limit", d.HistoryLimit)
	v.SetDefault("csv_detect_dates", d.CSVDetectDates)
	v.SetDefault("csv_delimiter", d.CSVDelimiter)
	v.SetDefault("api_timeout_sec", d.APITimeoutSec)
	v.SetDefault("debug", d.Debug)
	v.SetDefault("theme", d.Theme)
	v.SetDefault("assistant_backend", d.AssistantBackend)
	v.SetDefault("ollama_host", d.OllamaHost)
	v.SetDefault("ollama_model", d.OllamaModel)
	v.SetDefault("sandbox_timeout_sec", d.SandboxTimeoutSec)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else if path, err := DefaultPath(); err == nil {
		v.AddConfigPath(filepath.Dir(path))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects settings the application cannot run with.
func (c *Config) Validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("history_limit must not be negative, got %d", c.HistoryLimit)
	}
	if n := len([]rune(c.CSVDelimiter)); n > 1 {
		return fmt.Errorf("csv_delimiter must be a single character, got %q", c.CSVDelimiter)
	}
	return nil
}

// Delimiter returns the configured CSV separator, or 0 to detect it.
func (c *Config) Delimiter() rune {
	for _, r := range c.CSVDelimiter {
		return r
	}
	return 0
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.parqcel/config.yaml, creating the directory if necessary.
func Save(c *Config, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
