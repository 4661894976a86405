package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"prodscan/internal/config"
	"prodscan/internal/testsupport"
)

// discogsRoutes is a canned catalog: a release crediting the artist as
// producer and a master whose key release carries songwriting and mixing.
var discogsRoutes = map[string]string{
	"/oauth/identity": `{"id":7,"username":"tester"}`,
	"/artists/1":      `{"id":1,"name":"The Weeknd"}`,
	"/artists/1/releases": `{"pagination":{"page":1,"pages":1,"per_page":100,"items":2},"releases":[
		{"id":10,"type":"release","title":"Single","artist":"The Weeknd","year":2019,"role":"Main"},
		{"id":20,"type":"master","title":"After Hours","artist":"The Weeknd","year":2020,"role":"Main","main_release":21}]}`,
	"/releases/10": `{"id":10,"title":"Single","year":2019,"uri":"https://www.discogs.com/release/10",
		"artists":[{"name":"The Weeknd"}],"labels":[{"name":"XO"}],
		"extraartists":[{"name":"The Weeknd","role":"Producer"}]}`,
	"/masters/20": `{"id":20,"title":"After Hours","year":2020,"main_release":21,"artists":[{"name":"The Weeknd"}]}`,
	"/releases/21": `{"id":21,"title":"After Hours","year":2020,"master_id":20,
		"artists":[{"name":"The Weeknd"}],"labels":[{"name":"Some, \"Label\""}],
		"extraartists":[{"name":"The Weeknd (2)","role":"Songwriter, Mixed By"}]}`,
}

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	server     *httptest.Server

	mu       sync.Mutex
	requests []string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	env := &cliTestEnv{}
	env.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.mu.Lock()
		env.requests = append(env.requests, r.URL.Path)
		env.mu.Unlock()

		body, ok := discogsRoutes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(env.server.Close)

	t.Setenv("DISCOGS_TOKEN", "")
	t.Setenv("DISCOGS_ARTIST_ID", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	env.cfg = testsupport.NewConfig(t, testsupport.WithDiscogsURL(env.server.URL))
	env.configPath = filepath.Join(t.TempDir(), "config.toml")
	writeTestConfig(t, env.configPath, env.cfg)
	return env
}

func (e *cliTestEnv) requestCount(path string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, p := range e.requests {
		if p == path {
			n++
		}
	}
	return n
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[discogs]
token = %q
base_url = %q
request_delay_ms = %d
max_attempts = %d
detail_max_attempts = %d

[storage]
backend = %q
data_dir = %q

[logging]
level = %q
`,
		cfg.Discogs.Token,
		cfg.Discogs.BaseURL,
		cfg.Discogs.RequestDelayMS,
		cfg.Discogs.MaxAttempts,
		cfg.Discogs.DetailMaxAttempts,
		cfg.Storage.Backend,
		cfg.Storage.DataDir,
		cfg.Logging.Level,
	)
	testsupport.WriteFile(t, path, content)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
