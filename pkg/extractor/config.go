package extractor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// The original extraction call capped completions at 1024 tokens.
const defaultMaxCompletionTokens = 1024

// Config holds settings for the chat-to-decision extractor.
type Config struct {
	Model               string `yaml:"model"`
	MaxCompletionTokens int    `yaml:"max_completion_tokens"`
}

// LoadConfig reads extractor configuration from disk.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open extractor config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader constructs a Config from a reader.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read extractor config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal extractor config: %w", err)
	}
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.MaxCompletionTokens <= 0 {
		cfg.MaxCompletionTokens = defaultMaxCompletionTokens
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration bounds.
func (c *Config) Validate() error {
	if c.MaxCompletionTokens <= 0 {
		return errors.New("extractor config: max_completion_tokens must be positive")
	}
	return nil
}
