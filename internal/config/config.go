package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Discogs contains configuration for the Discogs API client and scan pacing.
type Discogs struct {
	Token                 string `toml:"token"`
	UserAgent             string `toml:"user_agent"`
	BaseURL               string `toml:"base_url"`
	RequestDelayMS        int    `toml:"request_delay_ms"`
	MaxAttempts           int    `toml:"max_attempts"`
	DetailMaxAttempts     int    `toml:"detail_max_attempts"`
	MaxAdditionalVersions int    `toml:"max_additional_versions"`
	HTTPTimeoutSeconds    int    `toml:"http_timeout_seconds"`
	OnlyMainRole          bool   `toml:"only_main_role"`
}

// Artist holds the default target artist used when no settings are saved.
type Artist struct {
	ID string `toml:"id"`
}

// Storage selects the key/value backend holding collections and queues.
type Storage struct {
	Backend   string `toml:"backend"`
	DataDir   string `toml:"data_dir"`
	RedisAddr string `toml:"redis_addr"`
	RedisDB   int    `toml:"redis_db"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Export controls the ordering of listed and exported collections.
type Export struct {
	SortColumn    string `toml:"sort_column"`
	SortDirection string `toml:"sort_direction"`
}

// Config encapsulates all configuration values for prodscan.
//
// Configuration sections by subsystem:
//   - Discogs: API access, pacing, retry budgets, and version fetch budget
//   - Artist: default target artist
//   - Storage: key/value backend and data directory
//   - Logging: log format and level
//   - Export: sort column and direction for list/export
type Config struct {
	Discogs Discogs `toml:"discogs"`
	Artist  Artist  `toml:"artist"`
	Storage Storage `toml:"storage"`
	Logging Logging `toml:"logging"`
	Export  Export  `toml:"export"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	xdg.Reload()
	return expandPath(filepath.Join(xdg.ConfigHome, "prodscan", "config.toml"))
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("prodscan.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Storage.DataDir, c.LogDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LogDir is where the CLI appends its log file.
func (c *Config) LogDir() string {
	return filepath.Join(c.Storage.DataDir, "logs")
}

// DatabasePath is the SQLite file used by the sqlite backend.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Storage.DataDir, "prodscan.db")
}

// BadgerDir is the directory used by the badger backend.
func (c *Config) BadgerDir() string {
	return filepath.Join(c.Storage.DataDir, "badger")
}

// LockPath guards sync and retry runs against each other.
func (c *Config) LockPath() string {
	return filepath.Join(c.Storage.DataDir, "sync.lock")
}

// RequestDelay returns the pause between top-level Discogs requests. An
// explicit request_delay_ms wins; otherwise authenticated clients use the
// faster cadence Discogs allows them.
func (c *Config) RequestDelay(hasToken bool) time.Duration {
	if c.Discogs.RequestDelayMS > 0 {
		return time.Duration(c.Discogs.RequestDelayMS) * time.Millisecond
	}
	if hasToken {
		return defaultTokenDelay
	}
	return defaultAnonymousDelay
}

// HTTPTimeout returns the per-request timeout for the Discogs client.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Discogs.HTTPTimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultDataDir() string {
	xdg.Reload()
	if strings.TrimSpace(xdg.DataHome) != "" {
		return filepath.Join(xdg.DataHome, "prodscan")
	}
	return "~/.local/share/prodscan"
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
