// Package config provides configuration types and helpers for ryulog.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Defaults shared by the CLI and its tests.
const (
	DefaultFormat    = "text"
	DefaultColor     = "auto"
	DefaultWorkers   = 4
	DefaultHeadBytes = 60000
	DefaultTailBytes = 6000
	DefaultDebounce  = "2s"
	DefaultPRChannel = "#pr-testing"

	blocklistFile = "blocklist.db"
)

// Config holds the application-wide configuration.
type Config struct {
	Format  string `mapstructure:"format"`
	Verbose bool   `mapstructure:"verbose"`
	Color   string `mapstructure:"color"`

	// Channel names where the log came from. Version checks only run for
	// channels listed in Channels.Allowed.
	Channel string `mapstructure:"channel"`
	Workers int    `mapstructure:"workers"`

	Read      ReadConfig      `mapstructure:"read"`
	Channels  ChannelsConfig  `mapstructure:"channels"`
	Blocklist BlocklistConfig `mapstructure:"blocklist"`
	Watch     WatchConfig     `mapstructure:"watch"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Redaction RedactionConfig `mapstructure:"redaction"`
}

// ReadConfig bounds how much of a log file is loaded.
type ReadConfig struct {
	HeadBytes int `mapstructure:"head_bytes"`
	TailBytes int `mapstructure:"tail_bytes"`
}

// ChannelsConfig lists channels that get version classification.
type ChannelsConfig struct {
	Allowed   []string `mapstructure:"allowed"`
	PRTesting string   `mapstructure:"pr_testing"`
}

// BlocklistConfig locates the title-ID blocklist database.
type BlocklistConfig struct {
	Path string `mapstructure:"path"`
}

// WatchConfig holds settings for watch mode.
type WatchConfig struct {
	Debounce string `mapstructure:"debounce"`
}

// LLMConfig holds configuration for LLM providers.
type LLMConfig struct {
	// Provider selects which LLM to use. Only "ollama" is supported.
	Provider string `mapstructure:"provider"`

	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`

	// TokenLimit caps the log digest placed in a prompt.
	TokenLimit int `mapstructure:"token_limit"`

	Ollama OllamaConfig `mapstructure:"ollama"`
}

// OllamaConfig holds Ollama-specific settings.
type OllamaConfig struct {
	Host      string `mapstructure:"host"`       // API endpoint
	Model     string `mapstructure:"model"`      // Default model name
	KeepAlive string `mapstructure:"keep_alive"` // e.g., "5m"
	NumCtx    int    `mapstructure:"num_ctx"`    // Context window size
}

// RedactionConfig controls what is scrubbed before a report leaves the machine.
type RedactionConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Patterns specifies which redaction patterns to use
	// Available: user_path, ipv4, ipv6, email, api_key, jwt, mac_address, uuid
	Patterns []string `mapstructure:"patterns"`
}

// ChannelAllowed reports whether version checks apply to the configured channel.
func (c *Config) ChannelAllowed() bool {
	if c.Channel == "" {
		return false
	}
	return slices.ContainsFunc(c.Channels.Allowed, func(ch string) bool {
		return strings.EqualFold(strings.TrimPrefix(ch, "#"), strings.TrimPrefix(c.Channel, "#"))
	})
}

// Validate rejects values the CLI cannot act on.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Format) {
	case "text", "table", "json", "yaml":
	default:
		return fmt.Errorf("unsupported format %q (want text, table, json or yaml)", c.Format)
	}
	switch strings.ToLower(c.Color) {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("unsupported color mode %q (want auto, always or never)", c.Color)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Read.HeadBytes < 0 || c.Read.TailBytes < 0 {
		return fmt.Errorf("read budget must not be negative")
	}
	return nil
}

// DefaultBlocklistPath returns the blocklist location under the user's
// config directory, falling back to the working directory.
func DefaultBlocklistPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return blocklistFile
	}
	return filepath.Join(dir, "ryulog", blocklistFile)
}
