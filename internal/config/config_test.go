package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"prodscan/internal/config"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tempHome, ".config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(tempHome, ".local", "share"))
	t.Setenv("DISCOGS_TOKEN", "")
	t.Setenv("DISCOGS_ARTIST_ID", "")
	return tempHome
}

func TestLoadDefaultConfigUsesXDGDataDir(t *testing.T) {
	tempHome := isolateEnv(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	wantConfig := filepath.Join(tempHome, ".config", "prodscan", "config.toml")
	if resolved != wantConfig {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, wantConfig)
	}

	wantData := filepath.Join(tempHome, ".local", "share", "prodscan")
	if cfg.Storage.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Storage.DataDir, wantData)
	}
	if cfg.Storage.Backend != config.BackendSQLite {
		t.Fatalf("expected sqlite backend by default, got %q", cfg.Storage.Backend)
	}
	if cfg.Discogs.BaseURL != "https://api.discogs.com" {
		t.Fatalf("unexpected base url: %q", cfg.Discogs.BaseURL)
	}
	if cfg.Discogs.MaxAdditionalVersions != 5 {
		t.Fatalf("expected 5 additional versions, got %d", cfg.Discogs.MaxAdditionalVersions)
	}
	if !cfg.Discogs.OnlyMainRole {
		t.Fatal("expected main-role filter enabled by default")
	}
	if cfg.Discogs.Token != "" {
		t.Fatalf("expected empty token, got %q", cfg.Discogs.Token)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Storage.DataDir, cfg.LogDir()} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	isolateEnv(t)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "prodscan.toml")

	type payload struct {
		Discogs struct {
			Token                 string `toml:"token"`
			BaseURL               string `toml:"base_url"`
			MaxAdditionalVersions int    `toml:"max_additional_versions"`
		} `toml:"discogs"`
		Storage struct {
			Backend string `toml:"backend"`
			DataDir string `toml:"data_dir"`
		} `toml:"storage"`
		Artist struct {
			ID string `toml:"id"`
		} `toml:"artist"`
	}
	custom := payload{}
	custom.Discogs.Token = "abc123"
	custom.Discogs.BaseURL = "https://example.com/discogs/"
	custom.Discogs.MaxAdditionalVersions = 2
	custom.Storage.Backend = "BADGER"
	custom.Storage.DataDir = filepath.Join(tempDir, "data")
	custom.Artist.ID = "[a1234]"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Discogs.Token != "abc123" {
		t.Fatalf("expected token from file, got %q", cfg.Discogs.Token)
	}
	if cfg.Discogs.BaseURL != "https://example.com/discogs" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Discogs.BaseURL)
	}
	if cfg.Discogs.MaxAdditionalVersions != 2 {
		t.Fatalf("expected 2 additional versions, got %d", cfg.Discogs.MaxAdditionalVersions)
	}
	if cfg.Storage.Backend != config.BackendBadger {
		t.Fatalf("expected badger backend, got %q", cfg.Storage.Backend)
	}
	if cfg.BadgerDir() != filepath.Join(tempDir, "data", "badger") {
		t.Fatalf("unexpected badger dir %q", cfg.BadgerDir())
	}
	if cfg.Artist.ID != "[a1234]" {
		t.Fatalf("unexpected artist id %q", cfg.Artist.ID)
	}
}

func TestEnvVarOverridesConfigFile(t *testing.T) {
	isolateEnv(t)
	configPath := filepath.Join(t.TempDir(), "prodscan.toml")
	content := "[discogs]\ntoken = \"file-token\"\n\n[artist]\nid = \"111\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("DISCOGS_TOKEN", "env-token")
	t.Setenv("DISCOGS_ARTIST_ID", "222")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Discogs.Token != "env-token" {
		t.Errorf("expected token from env, got %q", cfg.Discogs.Token)
	}
	if cfg.Artist.ID != "222" {
		t.Errorf("expected artist from env, got %q", cfg.Artist.ID)
	}
}

func TestRequestDelay(t *testing.T) {
	cfg := config.Default()
	if got := cfg.RequestDelay(true); got != 1100*time.Millisecond {
		t.Fatalf("token delay = %v", got)
	}
	if got := cfg.RequestDelay(false); got != 3*time.Second {
		t.Fatalf("anonymous delay = %v", got)
	}
	cfg.Discogs.RequestDelayMS = 250
	if got := cfg.RequestDelay(false); got != 250*time.Millisecond {
		t.Fatalf("explicit delay = %v", got)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"backend", func(c *config.Config) { c.Storage.Backend = "mongo" }, "storage.backend"},
		{"versions", func(c *config.Config) { c.Discogs.MaxAdditionalVersions = 11 }, "max_additional_versions"},
		{"attempts", func(c *config.Config) { c.Discogs.MaxAttempts = 0 }, "max_attempts"},
		{"artist", func(c *config.Config) { c.Artist.ID = "a12" }, "artist.id"},
		{"format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"sort", func(c *config.Config) { c.Export.SortColumn = "artwork" }, "export.sort_column"},
		{"base url", func(c *config.Config) { c.Discogs.BaseURL = "not a url" }, "discogs.base_url"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %q", tc.want, err.Error())
			}
		})
	}
}

func TestCreateSample(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[discogs]") {
		t.Fatalf("sample config missing discogs section: %s", contents)
	}

	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
}
