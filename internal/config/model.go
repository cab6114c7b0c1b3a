package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
)

const (
	StorageDriverFile   = "file"
	StorageDriverMemory = "memory"
	StorageDriverRedis  = "redis"

	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"
)

// Config represents the application configuration structure
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Storage StorageConfig `mapstructure:"storage"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Logging LoggingConfig `mapstructure:"logging"`

	source string
}

type APIConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	// Path is the directory for the file driver; empty means ~/.config/bolsillo
	Path   string `mapstructure:"path"`
	Prefix string `mapstructure:"prefix"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Driver  string        `mapstructure:"driver"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func (c *Config) Validate() error {

	if _, err := c.APIHost(); err != nil {
		return err
	}

	if !slices.Contains([]string{StorageDriverFile, StorageDriverMemory, StorageDriverRedis}, c.Storage.Driver) {
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Cache.Enabled && !slices.Contains([]string{CacheDriverMemory, CacheDriverRedis}, c.Cache.Driver) {
		return fmt.Errorf("unknown cache driver %q", c.Cache.Driver)
	}

	return nil
}

// GetAPIURL returns the base URL without a trailing slash.
func (c *Config) GetAPIURL() string {
	return strings.TrimSuffix(c.API.URL, "/")
}

func (c *Config) SetAPIURL(apiURL string) {
	c.API.URL = apiURL
}

// APIHost is the host of the API URL. Sessions are stored per host so that
// switching between servers never mixes credentials.
func (c *Config) APIHost() (string, error) {
	parsed, err := url.Parse(c.API.URL)
	if err != nil {
		return "", fmt.Errorf("invalid api url %q: %w", c.API.URL, err)
	}
	if len(parsed.Scheme) == 0 || len(parsed.Host) == 0 {
		return "", fmt.Errorf("invalid api url %q: scheme and host are required", c.API.URL)
	}
	return parsed.Host, nil
}

// Source is the config file that was read, if any.
func (c *Config) Source() string {
	return c.source
}
