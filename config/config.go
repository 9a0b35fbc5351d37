// Package config loads the monitor's YAML configuration and translates it
// into client options.
package config

import (
	"time"

	"mcpmon/client"
	"mcpmon/retry"
)

// Config is the top-level configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	MCP     MCPConfig     `yaml:"mcp"`
	Retry   RetryConfig   `yaml:"retry"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds the monitor's own listener settings.
type ServerConfig struct {
	MetricsPort int `yaml:"metrics_port"` // 0 disables the /metrics listener
}

// MCPConfig describes the MCP server process and per-call limits.
// Durations are in seconds.
type MCPConfig struct {
	Command             string  `yaml:"command"`
	TimeoutSeconds      int     `yaml:"timeout_seconds"`
	ToolCacheTTLSeconds int     `yaml:"tool_cache_ttl_seconds"`
	RateLimit           float64 `yaml:"rate_limit"` // calls per second, 0 = unlimited
	RateBurst           int     `yaml:"rate_burst"`
}

// RetryConfig mirrors retry.Policy with YAML-friendly fields. Pointer fields
// distinguish "absent, use the default" from an explicit zero: max_attempts: 0
// means one try with no retries, base_delay_seconds: 0 means no backoff.
type RetryConfig struct {
	MaxAttempts      *int     `yaml:"max_attempts"`
	BaseDelaySeconds *float64 `yaml:"base_delay_seconds"`
	MaxDelaySeconds  float64  `yaml:"max_delay_seconds"`
	Multiplier       float64  `yaml:"multiplier"`
	Jitter           *bool    `yaml:"jitter"` // nil means enabled
	JitterFactor     float64  `yaml:"jitter_factor"`
	Strategy         string   `yaml:"strategy"` // exponential, linear, constant
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Policy translates the retry section into a validated retry.Policy.
func (c *Config) Policy() (retry.Policy, error) {
	strategy, err := retry.ParseStrategy(c.Retry.Strategy)
	if err != nil {
		return retry.Policy{}, err
	}
	jitter := true
	if c.Retry.Jitter != nil {
		jitter = *c.Retry.Jitter
	}
	maxAttempts := 0
	if c.Retry.MaxAttempts != nil {
		maxAttempts = *c.Retry.MaxAttempts
	}
	baseDelay := 0.0
	if c.Retry.BaseDelaySeconds != nil {
		baseDelay = *c.Retry.BaseDelaySeconds
	}
	return retry.NewPolicy(retry.Policy{
		MaxAttempts:  maxAttempts,
		BaseDelay:    time.Duration(baseDelay * float64(time.Second)),
		MaxDelay:     time.Duration(c.Retry.MaxDelaySeconds * float64(time.Second)),
		Multiplier:   c.Retry.Multiplier,
		Jitter:       jitter,
		JitterFactor: c.Retry.JitterFactor,
		Strategy:     strategy,
	})
}

// ClientOptions translates the whole config into client options.
func (c *Config) ClientOptions() (client.Options, error) {
	policy, err := c.Policy()
	if err != nil {
		return client.Options{}, err
	}
	return client.Options{
		Command:      c.MCP.Command,
		Timeout:      time.Duration(c.MCP.TimeoutSeconds) * time.Second,
		ToolCacheTTL: time.Duration(c.MCP.ToolCacheTTLSeconds) * time.Second,
		Policy:       &policy,
		RateLimit:    c.MCP.RateLimit,
		RateBurst:    c.MCP.RateBurst,
	}, nil
}
