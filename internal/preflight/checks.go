package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"prodscan/internal/store"
)

const (
	discogsCheckTimeout = 10 * time.Second
	storeProbeKey       = "preflight_probe"
)

// CheckDiscogs verifies the API is reachable. With a token it calls the
// identity endpoint so an invalid token is reported; without one it only
// confirms the API answers.
func CheckDiscogs(ctx context.Context, baseURL, token, userAgent string) Result {
	const name = "Discogs API"

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing base url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, discogsCheckTimeout)
	defer cancel()

	target := base + "/"
	token = strings.TrimSpace(token)
	if token != "" {
		target = base + "/oauth/identity"
	}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, target, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("request failed (%v)", err)}
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	if token != "" {
		req.Header.Set("Authorization", "Discogs token="+token)
	}

	client := &http.Client{Timeout: discogsCheckTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: summarizeNetError(err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK && token != "":
		return Result{Name: name, Passed: true, Detail: "reachable (token accepted)"}
	case resp.StatusCode == http.StatusOK:
		return Result{Name: name, Passed: true, Detail: "reachable (anonymous, slower rate limit)"}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Result{Name: name, Detail: "token rejected"}
	case resp.StatusCode == http.StatusTooManyRequests:
		return Result{Name: name, Passed: true, Detail: "reachable (currently rate limited)"}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckStore round-trips a probe key through an open store.
func CheckStore(ctx context.Context, backend string, kv store.KV) Result {
	name := "Store (" + backend + ")"
	if kv == nil {
		return Result{Name: name, Detail: "not open"}
	}
	if err := kv.Set(ctx, storeProbeKey, []byte("ok")); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("write failed (%v)", err)}
	}
	if _, err := kv.Get(ctx, storeProbeKey); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("read failed (%v)", err)}
	}
	if err := kv.Remove(ctx, storeProbeKey); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("cleanup failed (%v)", err)}
	}
	return Result{Name: name, Passed: true, Detail: "read/write ok"}
}

func summarizeNetError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out (Discogs unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out (Discogs unreachable)"
	}
	return fmt.Sprintf("unreachable (%v)", err)
}
