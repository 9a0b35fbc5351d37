package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file. Environment variables in the
// file body (e.g. ${KUBECONFIG}) are expanded before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if cfg.MCP.Command == "" {
		return nil, fmt.Errorf("config: mcp.command is required")
	}
	if _, err := cfg.Policy(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.MCP.TimeoutSeconds == 0 {
		cfg.MCP.TimeoutSeconds = 30
	}
	if cfg.MCP.ToolCacheTTLSeconds == 0 {
		cfg.MCP.ToolCacheTTLSeconds = 60
	}
	if cfg.Retry.MaxAttempts == nil {
		attempts := 3
		cfg.Retry.MaxAttempts = &attempts
	}
	if cfg.Retry.BaseDelaySeconds == nil {
		delay := 1.0
		cfg.Retry.BaseDelaySeconds = &delay
	}
	if cfg.Retry.MaxDelaySeconds == 0 {
		cfg.Retry.MaxDelaySeconds = 60
	}
	if cfg.Retry.Multiplier == 0 {
		cfg.Retry.Multiplier = 2
	}
	if cfg.Retry.JitterFactor == 0 {
		cfg.Retry.JitterFactor = 0.1
	}
	if cfg.Retry.Strategy == "" {
		cfg.Retry.Strategy = "exponential"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
