package discogs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

type recordedSleeps struct {
	waits []time.Duration
}

func (r *recordedSleeps) sleep(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return ctx.Err()
}

func newTestClient(t *testing.T, baseURL string, cfg Config) (*Client, *recordedSleeps) {
	t.Helper()
	cfg.BaseURL = baseURL
	client, err := New(cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	rec := &recordedSleeps{}
	client.sleep = rec.sleep
	client.jitter = func(time.Duration) time.Duration { return 0 }
	return client, rec
}

func TestFetchJSONSetsHeaders(t *testing.T) {
	var gotUA, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 42, "name": "Test Artist"}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, Config{Token: "secret", UserAgent: "prodscan-test/1.0"})
	artist, err := client.GetArtist(context.Background(), "42")
	if err != nil {
		t.Fatalf("GetArtist returned error: %v", err)
	}
	if artist.Name != "Test Artist" || artist.ID != 42 {
		t.Fatalf("unexpected artist: %+v", artist)
	}
	if gotUA != "prodscan-test/1.0" {
		t.Fatalf("expected user agent header, got %q", gotUA)
	}
	if gotAuth != "Discogs token=secret" {
		t.Fatalf("expected token authorization header, got %q", gotAuth)
	}
}

func TestFetchJSONOmitsAuthorizationWithoutToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, Config{})
	if client.HasToken() {
		t.Fatal("expected anonymous client")
	}
	var out map[string]any
	if err := client.FetchJSON(context.Background(), server.URL+"/x", &out); err != nil {
		t.Fatalf("FetchJSON returned error: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("expected no authorization header, got %q", gotAuth)
	}
}

func TestFetchJSONRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"id": 7}`))
	}))
	defer server.Close()

	client, rec := newTestClient(t, server.URL, Config{MaxAttempts: 3})
	release, err := client.GetRelease(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetRelease returned error: %v", err)
	}
	if release.ID != 7 {
		t.Fatalf("unexpected release id %d", release.ID)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 requests, got %d", calls.Load())
	}
	want := []time.Duration{2 * time.Second, 4 * time.Second}
	if len(rec.waits) != len(want) {
		t.Fatalf("expected waits %v, got %v", want, rec.waits)
	}
	for i := range want {
		if rec.waits[i] != want[i] {
			t.Fatalf("wait %d: expected %v, got %v", i, want[i], rec.waits[i])
		}
	}
}

func TestFetchJSONExhaustsAttempts(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	client, rec := newTestClient(t, server.URL, Config{MaxAttempts: 3})
	err := client.FetchJSON(context.Background(), server.URL+"/releases/1", &Release{})
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected ErrTransient, got %v", err)
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError || apiErr.Attempts != 3 {
		t.Fatalf("unexpected error details: %+v", apiErr)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 requests, got %d", calls.Load())
	}
	if len(rec.waits) != 2 {
		t.Fatalf("expected no wait after the final attempt, got %v", rec.waits)
	}
}

func TestFetchJSONDetailBudget(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, Config{MaxAttempts: 3})
	detail := client.WithMaxAttempts(2)
	if _, err := detail.GetArtist(context.Background(), "1"); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 requests, got %d", calls.Load())
	}
	if client.MaxAttempts() != 3 {
		t.Fatalf("expected original budget untouched, got %d", client.MaxAttempts())
	}
}

func TestFetchJSONPermanentStatusesFailImmediately(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound} {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(status)
		}))

		client, rec := newTestClient(t, server.URL, Config{MaxAttempts: 5})
		_, err := client.GetMaster(context.Background(), 99)
		server.Close()

		if !IsPermanent(err) {
			t.Fatalf("status %d: expected permanent error, got %v", status, err)
		}
		if StatusCode(err) != status {
			t.Fatalf("status %d: expected status on error, got %d", status, StatusCode(err))
		}
		if calls.Load() != 1 {
			t.Fatalf("status %d: expected single request, got %d", status, calls.Load())
		}
		if len(rec.waits) != 0 {
			t.Fatalf("status %d: expected no waits, got %v", status, rec.waits)
		}
	}
}

func TestFetchJSONThrottleDoesNotConsumeAttempts(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"id": 5}`))
	}))
	defer server.Close()

	var events []ThrottleEvent
	client, rec := newTestClient(t, server.URL, Config{
		MaxAttempts: 1,
		OnThrottle:  func(ev ThrottleEvent) { events = append(events, ev) },
	})
	master, err := client.GetMaster(context.Background(), 5)
	if err != nil {
		t.Fatalf("GetMaster returned error: %v", err)
	}
	if master.ID != 5 {
		t.Fatalf("unexpected master id %d", master.ID)
	}
	want := []time.Duration{5 * time.Second, 10 * time.Second, 20 * time.Second}
	if len(rec.waits) != len(want) {
		t.Fatalf("expected waits %v, got %v", want, rec.waits)
	}
	for i := range want {
		if rec.waits[i] != want[i] {
			t.Fatalf("wait %d: expected %v, got %v", i, want[i], rec.waits[i])
		}
	}
	if len(events) != 3 || events[2].Count != 3 {
		t.Fatalf("expected three throttle notifications, got %+v", events)
	}
	for _, ev := range events {
		if !errors.Is(ev.Err, ErrThrottled) || StatusCode(ev.Err) != http.StatusTooManyRequests {
			t.Fatalf("expected throttled error on event, got %v", ev.Err)
		}
		if IsPermanent(ev.Err) {
			t.Fatalf("throttle must not read as permanent: %v", ev.Err)
		}
	}
}

func TestFetchJSONHonoursRetryAfter(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for a real Retry-After interval")
	}
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"id": 1}`))
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL, MaxAttempts: 1})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	start := time.Now()
	if _, err := client.GetRelease(context.Background(), 1); err != nil {
		t.Fatalf("GetRelease returned error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 2*time.Second {
		t.Fatalf("expected to wait at least 2s, waited %v", elapsed)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 requests, got %d", calls.Load())
	}
}

func TestFetchJSONCancelledBeforeRequest(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetRelease(ctx, 1)
	if !errors.Is(err, ErrCancelled) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no requests, got %d", calls.Load())
	}
}

func TestFetchJSONCancelledDuringThrottleWait(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	client, _ := newTestClient(t, server.URL, Config{})
	client.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	_, err := client.GetRelease(ctx, 1)
	if !IsCancelled(err) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
}

func TestFetchJSONDecodeFailureIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, Config{MaxAttempts: 2})
	_, err := client.GetRelease(context.Background(), 1)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected transient decode error, got %v", err)
	}
}

func TestArtistReleasesRequestsPage(t *testing.T) {
	var gotPath, gotPage, gotPerPage string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotPage = r.URL.Query().Get("page")
		gotPerPage = r.URL.Query().Get("per_page")
		_, _ = w.Write([]byte(`{"pagination": {"page": 2, "pages": 3}, "releases": [{"id": 10, "type": "master", "role": "Main"}]}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, Config{})
	page, err := client.ArtistReleases(context.Background(), "123", 2)
	if err != nil {
		t.Fatalf("ArtistReleases returned error: %v", err)
	}
	if gotPath != "/artists/123/releases" || gotPage != "2" || gotPerPage != "100" {
		t.Fatalf("unexpected request path=%q page=%q per_page=%q", gotPath, gotPage, gotPerPage)
	}
	if page.Pagination == nil || page.Pagination.Pages != 3 {
		t.Fatalf("unexpected pagination: %+v", page.Pagination)
	}
	if page.Releases == nil || len(*page.Releases) != 1 || !(*page.Releases)[0].IsMaster() {
		t.Fatalf("unexpected releases: %+v", page.Releases)
	}
}

func TestMasterVersionsQuery(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"versions": [{"id": 1}, {"id": 2}]}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, Config{})
	page, err := client.MasterVersions(context.Background(), 55, 15)
	if err != nil {
		t.Fatalf("MasterVersions returned error: %v", err)
	}
	if gotQuery != "per_page=15&sort=released&sort_order=desc" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
	if len(page.Versions) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(page.Versions))
	}
}

func TestNewPacesWithoutBursts(t *testing.T) {
	client, err := New(Config{BaseURL: "https://api.discogs.com", RequestsPerMinute: 54})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if client.limiter == nil || client.limiter.Burst() != 1 {
		t.Fatalf("expected burst of 1, got %+v", client.limiter)
	}
	paced, err := New(Config{BaseURL: "https://api.discogs.com"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if paced.limiter != nil {
		t.Fatal("expected no limiter without a request rate")
	}
}

func TestNewRejectsRelativeBaseURL(t *testing.T) {
	if _, err := New(Config{BaseURL: "api.discogs.com"}); err == nil {
		t.Fatal("expected error for relative base url")
	}
}
