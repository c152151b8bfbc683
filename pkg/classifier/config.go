package classifier

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultMaxCompletionTokens = 512
)

// Config holds settings for the zero-shot classifier.
type Config struct {
	// Model is the LLM model alias used for scoring. Empty means the client's
	// default model.
	Model               string   `yaml:"model"`
	Temperature         *float64 `yaml:"temperature,omitempty"`
	MaxCompletionTokens int      `yaml:"max_completion_tokens"`
}

// LoadConfig reads classifier configuration from disk.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open classifier config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader constructs a Config from a reader.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read classifier config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal classifier config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration bounds.
func (c *Config) Validate() error {
	if c.MaxCompletionTokens <= 0 {
		return errors.New("classifier config: max_completion_tokens must be positive")
	}
	if c.Temperature != nil && (*c.Temperature < 0 || *c.Temperature > 2) {
		return errors.New("classifier config: temperature out of range")
	}
	return nil
}

func (c *Config) applyDefaults() {
	c.Model = strings.TrimSpace(c.Model)
	if c.MaxCompletionTokens <= 0 {
		c.MaxCompletionTokens = defaultMaxCompletionTokens
	}
}
