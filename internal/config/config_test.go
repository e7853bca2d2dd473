package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.hyp3.asf.alaska.edu", cfg.API.BaseURL)
	assert.Equal(t, "https://api.daac.asf.alaska.edu", cfg.API.SearchURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, "rtc_products", cfg.Dirs.Products)
	assert.Equal(t, "tiffs", cfg.Dirs.Output)
	assert.Equal(t, 2, cfg.Download.Concurrency)
	assert.True(t, cfg.Download.Verify)
	assert.True(t, cfg.Download.Extract)
	assert.Equal(t, "gdalwarp", cfg.GDAL.Warp)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HYP3_API_URL", "https://hyp3.example.com")
	t.Setenv("EARTHDATA_TOKEN", "secret")
	t.Setenv("DIR_PRODUCTS", "work/products")
	t.Setenv("DOWNLOAD_CONCURRENCY", "4")
	t.Setenv("GDAL_MERGE", "/opt/gdal/gdal_merge.py")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://hyp3.example.com", cfg.API.BaseURL)
	assert.Equal(t, "secret", cfg.Auth.Token)
	assert.Equal(t, "work/products", cfg.Dirs.Products)
	assert.Equal(t, 4, cfg.Download.Concurrency)
	assert.Equal(t, "/opt/gdal/gdal_merge.py", cfg.GDAL.Merge)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing api url", func(c *Config) { c.API.BaseURL = "" }},
		{"missing search url", func(c *Config) { c.API.SearchURL = "" }},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }},
		{"zero concurrency", func(c *Config) { c.Download.Concurrency = 0 }},
		{"missing products dir", func(c *Config) { c.Dirs.Products = "" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
