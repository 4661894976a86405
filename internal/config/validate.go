package config

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
)

var artistIDPattern = regexp.MustCompile(`^(\[a\d+\]|\d+)$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDiscogs(); err != nil {
		return err
	}
	if err := c.validateArtist(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDiscogs() error {
	parsed, err := url.Parse(c.Discogs.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("discogs.base_url must be an absolute URL, got %q", c.Discogs.BaseURL)
	}
	if c.Discogs.RequestDelayMS < 0 {
		return errors.New("discogs.request_delay_ms must be zero (auto) or positive")
	}
	if c.Discogs.MaxAttempts < 1 {
		return errors.New("discogs.max_attempts must be at least 1")
	}
	if c.Discogs.DetailMaxAttempts < 1 {
		return errors.New("discogs.detail_max_attempts must be at least 1")
	}
	if c.Discogs.MaxAdditionalVersions < 0 || c.Discogs.MaxAdditionalVersions > maxAdditionalVersionsLimit {
		return fmt.Errorf("discogs.max_additional_versions must be between 0 and %d", maxAdditionalVersionsLimit)
	}
	if c.Discogs.HTTPTimeoutSeconds < 1 {
		return errors.New("discogs.http_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateArtist() error {
	if c.Artist.ID == "" {
		return nil
	}
	if !artistIDPattern.MatchString(c.Artist.ID) {
		return fmt.Errorf("artist.id must be numeric or in [a12345] form, got %q", c.Artist.ID)
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendBadger:
	case BackendRedis:
		if c.Storage.RedisAddr == "" {
			return errors.New("storage.redis_addr is required for the redis backend")
		}
		if c.Storage.RedisDB < 0 {
			return errors.New("storage.redis_db must not be negative")
		}
	default:
		return fmt.Errorf("storage.backend: unsupported value %q (want sqlite, badger, or redis)", c.Storage.Backend)
	}
	if c.Storage.DataDir == "" {
		return errors.New("storage.data_dir must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateExport() error {
	switch c.Export.SortColumn {
	case "artist", "title", "label", "year", "credits":
	default:
		return fmt.Errorf("export.sort_column: unsupported value %q", c.Export.SortColumn)
	}
	switch c.Export.SortDirection {
	case "asc", "desc":
	default:
		return fmt.Errorf("export.sort_direction: unsupported value %q", c.Export.SortDirection)
	}
	return nil
}
