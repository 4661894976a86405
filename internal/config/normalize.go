package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeDiscogs()
	c.normalizeArtist()
	if err := c.normalizeStorage(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeExport()
	return nil
}

func (c *Config) normalizeDiscogs() {
	if value, ok := os.LookupEnv("DISCOGS_TOKEN"); ok && strings.TrimSpace(value) != "" {
		c.Discogs.Token = value
	}
	c.Discogs.Token = strings.TrimSpace(c.Discogs.Token)
	c.Discogs.UserAgent = strings.TrimSpace(c.Discogs.UserAgent)
	if c.Discogs.UserAgent == "" {
		c.Discogs.UserAgent = defaultUserAgent
	}
	c.Discogs.BaseURL = strings.TrimRight(strings.TrimSpace(c.Discogs.BaseURL), "/")
	if c.Discogs.BaseURL == "" {
		c.Discogs.BaseURL = defaultBaseURL
	}
	if c.Discogs.HTTPTimeoutSeconds == 0 {
		c.Discogs.HTTPTimeoutSeconds = defaultHTTPTimeoutSeconds
	}
}

func (c *Config) normalizeArtist() {
	if value, ok := os.LookupEnv("DISCOGS_ARTIST_ID"); ok && strings.TrimSpace(value) != "" {
		c.Artist.ID = value
	}
	c.Artist.ID = strings.TrimSpace(c.Artist.ID)
}

func (c *Config) normalizeStorage() error {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaultStorageBackend
	}
	if strings.TrimSpace(c.Storage.DataDir) == "" {
		c.Storage.DataDir = defaultDataDir()
	}
	var err error
	if c.Storage.DataDir, err = expandPath(c.Storage.DataDir); err != nil {
		return fmt.Errorf("storage.data_dir: %w", err)
	}
	c.Storage.RedisAddr = strings.TrimSpace(c.Storage.RedisAddr)
	if c.Storage.Backend == BackendRedis && c.Storage.RedisAddr == "" {
		c.Storage.RedisAddr = defaultRedisAddr
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeExport() {
	c.Export.SortColumn = strings.ToLower(strings.TrimSpace(c.Export.SortColumn))
	if c.Export.SortColumn == "" {
		c.Export.SortColumn = defaultSortColumn
	}
	c.Export.SortDirection = strings.ToLower(strings.TrimSpace(c.Export.SortDirection))
	if c.Export.SortDirection == "" {
		c.Export.SortDirection = defaultSortDirection
	}
}
