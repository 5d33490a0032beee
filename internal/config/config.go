// Package config loads the blox.yaml settings shared by the CLI commands.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/aretw0/blox/pkg/domain"
	"github.com/aretw0/blox/pkg/export"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up by LoadFromDir.
const FileName = "blox.yaml"

// Config represents the blox.yaml configuration file.
type Config struct {
	Document string              `yaml:"document"`
	LogLevel string              `yaml:"log_level"`
	Server   ServerConfig        `yaml:"server"`
	Render   RenderConfig        `yaml:"render"`
	Campaign export.CampaignMeta `yaml:"campaign"`
	Redis    RedisConfig         `yaml:"redis"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host  string `yaml:"host"`
	Port  int    `yaml:"port"`
	Watch bool   `yaml:"watch"` // reload the document file when it changes on disk
	// CORSOrigin is sent as Access-Control-Allow-Origin. Empty means "*".
	CORSOrigin string `yaml:"cors_origin"`
}

// RenderConfig contains renderer settings.
type RenderConfig struct {
	MaxDepth int    `yaml:"max_depth"`
	Viewport string `yaml:"viewport"`
}

// RedisConfig configures the change outbox. Empty Addr disables it.
type RedisConfig struct {
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
	Channel string `yaml:"channel"`
	MaxLen  int64  `yaml:"max_len"`
}

// Addr returns host:port for the HTTP server.
func (c ServerConfig) Addr() string {
	port := c.Port
	if port == 0 {
		port = 8080
	}
	return fmt.Sprintf("%s:%d", c.Host, port)
}

// GetCORSOrigin returns the configured origin or "*".
func (c ServerConfig) GetCORSOrigin() string {
	if c.CORSOrigin == "" {
		return "*"
	}
	return c.CORSOrigin
}

// GetMaxDepth returns the recursion bound, defaulting to 64.
func (c RenderConfig) GetMaxDepth() int {
	if c.MaxDepth <= 0 {
		return 64
	}
	return c.MaxDepth
}

// GetViewport returns the default preview viewport.
func (c RenderConfig) GetViewport() (domain.Viewport, error) {
	if c.Viewport == "" {
		return domain.ViewportDesktop, nil
	}
	return domain.ParseViewport(c.Viewport)
}

// Enabled reports whether an outbox address is configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// GetPrefix returns the prefix for the outbox and snapshot keys.
func (c RedisConfig) GetPrefix() string {
	if c.Prefix == "" {
		return "blox:"
	}
	return c.Prefix
}

// GetChannel returns the pub/sub channel for change notifications.
func (c RedisConfig) GetChannel() string {
	if c.Channel == "" {
		return "blox:events"
	}
	return c.Channel
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Document: "email.json",
		LogLevel: "info",
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Render: RenderConfig{
			MaxDepth: 64,
			Viewport: string(domain.ViewportDesktop),
		},
	}
}

// Load reads configPath over the defaults. A missing file is not an error.
// BLOX_* environment variables override file values.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if _, err := cfg.Render.GetViewport(); err != nil {
		return nil, fmt.Errorf("render.viewport: %w", err)
	}
	return cfg, nil
}

// LoadFromDir loads blox.yaml from dir, or the defaults when absent.
func LoadFromDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, FileName))
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"BLOX_DOCUMENT":      &c.Document,
		"BLOX_LOG_LEVEL":     &c.LogLevel,
		"BLOX_HOST":          &c.Server.Host,
		"BLOX_VIEWPORT":      &c.Render.Viewport,
		"BLOX_REDIS_ADDR":    &c.Redis.Addr,
		"BLOX_REDIS_PREFIX":  &c.Redis.Prefix,
		"BLOX_REDIS_CHANNEL": &c.Redis.Channel,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	if v, ok := lookup("BLOX_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BLOX_PORT: %w", err)
		}
		c.Server.Port = port
	}
	return nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
