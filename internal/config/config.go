package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	YouTube YouTubeConfig `yaml:"youtube"`
	Worker  WorkerConfig  `yaml:"worker"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `yaml:"host" envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port         int           `yaml:"port" envconfig:"SERVER_PORT" default:"9848"`
	APIKey       string        `yaml:"api_key" envconfig:"API_KEY"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT" default:"2m"`
	// CORSOrigins lists origins allowed to call the API. "*" allows all.
	CORSOrigins  []string      `yaml:"cors_origins" envconfig:"SERVER_CORS_ORIGINS" default:"*"`
}

// StorageConfig holds settings persistence configuration.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path" envconfig:"STORAGE_DATABASE_PATH" default:"/data/vidcard.db"`
	// Secret encrypts the stored YouTube API key. Empty stores it as plain text.
	Secret string `yaml:"secret" envconfig:"STORAGE_SECRET"`
}

// YouTubeConfig holds the lookup service endpoints.
type YouTubeConfig struct {
	OEmbedURL  string        `yaml:"oembed_url" envconfig:"YOUTUBE_OEMBED_URL" default:"https://www.youtube.com/oembed"`
	DataAPIURL string        `yaml:"data_api_url" envconfig:"YOUTUBE_DATA_API_URL" default:"https://www.googleapis.com/youtube/v3"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"YOUTUBE_TIMEOUT" default:"10s"`
	UserAgent  string        `yaml:"user_agent" envconfig:"YOUTUBE_USER_AGENT" default:"vidcard/1.0"`
}

// WorkerConfig holds enrichment job worker configuration.
type WorkerConfig struct {
	Count        int           `yaml:"count" envconfig:"WORKER_COUNT" default:"2"`
	PollInterval time.Duration `yaml:"poll_interval" envconfig:"WORKER_POLL_INTERVAL" default:"1s"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// LoadClient reads configuration for the command line tools, which
// never serve HTTP and therefore need no server API key.
func LoadClient(configPath string) (*Config, error) {
	cfg := &Config{}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if err := cfg.validateShared(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.Server.APIKey == "" {
		return fmt.Errorf("API_KEY is required")
	}
	return c.validateShared()
}

func (c *Config) validateShared() error {
	if c.Storage.DatabasePath == "" {
		return fmt.Errorf("STORAGE_DATABASE_PATH is required")
	}
	if c.YouTube.OEmbedURL == "" {
		return fmt.Errorf("YOUTUBE_OEMBED_URL is required")
	}
	if c.YouTube.DataAPIURL == "" {
		return fmt.Errorf("YOUTUBE_DATA_API_URL is required")
	}
	if c.YouTube.Timeout <= 0 {
		return fmt.Errorf("YOUTUBE_TIMEOUT must be positive")
	}
	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
