package testsupport

import (
	"testing"

	"prodscan/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t   testing.TB
	cfg *config.Config
}

// NewConfig produces a config rooted in a per-test temp directory with the
// sqlite backend, quiet logging, and no request delay.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfgVal := config.Default()
	cfgVal.Storage.DataDir = t.TempDir()
	cfgVal.Discogs.Token = "test-token"
	cfgVal.Discogs.RequestDelayMS = 1
	cfgVal.Discogs.MaxAttempts = 1
	cfgVal.Discogs.DetailMaxAttempts = 1
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{t: t, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithDiscogsURL points the client at a test server.
func WithDiscogsURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Discogs.BaseURL = url
	}
}

// WithArtist sets the default target artist.
func WithArtist(id string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Artist.ID = id
	}
}

// WithBackend selects the storage backend.
func WithBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Storage.Backend = backend
	}
}

// WithoutToken clears the API token.
func WithoutToken() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Discogs.Token = ""
	}
}
