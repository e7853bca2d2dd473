// Package config provides environment-based configuration for the hyp3cli
// tool.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the complete application configuration loaded from
// environment variables.
type Config struct {
	API      APIConfig      `envPrefix:"HYP3_"`
	Auth     AuthConfig     `envPrefix:"EARTHDATA_"`
	Dirs     DirConfig      `envPrefix:"DIR_"`
	Download DownloadConfig `envPrefix:"DOWNLOAD_"`
	GDAL     GDALConfig     `envPrefix:"GDAL_"`
	Logging  LoggingConfig  `envPrefix:"LOG_"`
}

// APIConfig contains HyP3 and search API client configuration.
type APIConfig struct {
	BaseURL   string        `env:"API_URL" envDefault:"https://api.hyp3.asf.alaska.edu"`
	SearchURL string        `env:"SEARCH_URL" envDefault:"https://api.daac.asf.alaska.edu"`
	Timeout   time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

// AuthConfig contains Earthdata URS credentials. A token takes precedence
// over username/password when both are set.
type AuthConfig struct {
	Token    string `env:"TOKEN"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	// WriteNetrc mirrors credentials into ~/.netrc after a successful
	// run so external tools can reuse them.
	WriteNetrc bool `env:"WRITE_NETRC" envDefault:"false"`
}

// DirConfig contains the working directory layout.
type DirConfig struct {
	Products string `env:"PRODUCTS" envDefault:"rtc_products"`
	Output   string `env:"OUTPUT" envDefault:"tiffs"`
}

// DownloadConfig controls product retrieval.
type DownloadConfig struct {
	Concurrency int  `env:"CONCURRENCY" envDefault:"2"`
	Verify      bool `env:"VERIFY" envDefault:"true"`
	Extract     bool `env:"EXTRACT" envDefault:"true"`
	// S3CredentialsURL enables direct S3 downloads when set.
	S3CredentialsURL string `env:"S3_CREDENTIALS_URL"`
}

// GDALConfig names the GDAL executables. Defaults resolve from PATH.
type GDALConfig struct {
	SRSInfo string `env:"SRSINFO" envDefault:"gdalsrsinfo"`
	Warp    string `env:"WARP" envDefault:"gdalwarp"`
	Merge   string `env:"MERGE" envDefault:"gdal_merge.py"`
	Info    string `env:"INFO" envDefault:"gdalinfo"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"text"`
}

// Load parses configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("HyP3 API URL is required")
	}
	if c.API.SearchURL == "" {
		return fmt.Errorf("search API URL is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("API timeout must be positive, got %s", c.API.Timeout)
	}
	if c.Download.Concurrency < 1 {
		return fmt.Errorf("download concurrency must be at least 1, got %d", c.Download.Concurrency)
	}
	if c.Dirs.Products == "" || c.Dirs.Output == "" {
		return fmt.Errorf("products and output directories are required")
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log format must be 'text' or 'json', got %q", c.Logging.Format)
	}
	return nil
}
