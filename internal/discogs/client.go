package discogs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"prodscan/internal/logging"
)

const (
	defaultBaseURL     = "https://api.discogs.com"
	defaultUserAgent   = "ProductionCreditScanner/dev"
	defaultHTTPTimeout = 30 * time.Second
	defaultMaxAttempts = 3
	defaultBurst       = 1
	maxBodyBytes       = 16 << 20
)

// Config describes the Discogs client configuration.
type Config struct {
	Token       string
	UserAgent   string
	BaseURL     string
	HTTPClient  *http.Client
	MaxAttempts int
	// RequestsPerMinute caps the sustained request rate. Zero disables pacing.
	RequestsPerMinute int
	Burst             int
	Logger            *slog.Logger
	// OnThrottle is invoked before each 429 wait.
	OnThrottle func(ThrottleEvent)
}

// ThrottleEvent describes a 429 response and the wait that follows it.
// Err wraps ErrThrottled.
type ThrottleEvent struct {
	URL   string
	Wait  time.Duration
	Count int
	Err   error
}

// Client wraps the Discogs REST API.
type Client struct {
	token       string
	userAgent   string
	baseURL     *url.URL
	http        *http.Client
	maxAttempts int
	limiter     *rate.Limiter
	logger      *slog.Logger
	onThrottle  func(ThrottleEvent)

	sleep  func(context.Context, time.Duration) error
	jitter func(time.Duration) time.Duration
	now    func() time.Time
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("discogs: parse base url: %w", err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("discogs: base url %q must be absolute", base)
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = defaultBurst
		}
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), burst)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{
		token:       strings.TrimSpace(cfg.Token),
		userAgent:   userAgent,
		baseURL:     baseURL,
		http:        client,
		maxAttempts: attempts,
		limiter:     limiter,
		logger:      logging.NewComponentLogger(logger, "discogs"),
		onThrottle:  cfg.OnThrottle,
		sleep:       SleepWithContext,
		jitter:      randomJitter,
		now:         time.Now,
	}, nil
}

// HasToken reports whether requests are authenticated.
func (c *Client) HasToken() bool {
	return c != nil && c.token != ""
}

// MaxAttempts returns the attempt budget used by FetchJSON.
func (c *Client) MaxAttempts() int {
	if c == nil {
		return 0
	}
	return c.maxAttempts
}

// WithMaxAttempts returns a client sharing transport and pacing with c but
// using a different attempt budget.
func (c *Client) WithMaxAttempts(n int) *Client {
	if c == nil || n <= 0 {
		return c
	}
	clone := *c
	clone.maxAttempts = n
	return &clone
}

// FetchJSON performs a GET against rawURL and decodes the JSON body into dest.
//
// 429 responses wait for Retry-After (or an exponential throttle delay) and do
// not consume an attempt. 401, 403, and 404 fail immediately with
// ErrPermanent. Every other failure is retried with backoff until the attempt
// budget is spent.
func (c *Client) FetchJSON(ctx context.Context, rawURL string, dest any) error {
	if c == nil {
		return errors.New("discogs: client is nil")
	}
	var (
		lastErr   error
		attempts  int
		throttles int
	)
	for attempts < c.maxAttempts {
		if err := ctx.Err(); err != nil {
			return c.cancelled(rawURL, attempts, err)
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return c.cancelled(rawURL, attempts, ctxErrOr(ctx, err))
			}
		}

		c.logger.Debug("discogs request", logging.Args(logging.Request(rawURL, attempts+1)...)...)
		resp, err := c.do(ctx, rawURL)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return c.cancelled(rawURL, attempts, ctxErr)
		}

		switch {
		case err != nil:
			lastErr = &Error{Op: "fetch", URL: rawURL, Err: fmt.Errorf("%w: %w", ErrTransient, err)}
		case resp.status == http.StatusTooManyRequests:
			wait, ok := RetryAfter(resp.header, c.now())
			if !ok {
				wait = ThrottleWait(throttles, c.jitter(throttleJitter))
			}
			throttles++
			c.logger.Warn("discogs rate limit reached; waiting",
				logging.String(logging.FieldEventType, "discogs_throttled"),
				logging.String(logging.FieldURL, rawURL),
				logging.Wait(wait),
				logging.Int("throttle_count", throttles),
			)
			if c.onThrottle != nil {
				c.onThrottle(ThrottleEvent{
					URL:   rawURL,
					Wait:  wait,
					Count: throttles,
					Err:   &Error{Op: "fetch", URL: rawURL, StatusCode: resp.status, Attempts: attempts, Err: ErrThrottled},
				})
			}
			if err := c.sleep(ctx, wait); err != nil {
				return c.cancelled(rawURL, attempts, ctxErrOr(ctx, err))
			}
			continue
		case isPermanentStatus(resp.status):
			err := &Error{Op: "fetch", URL: rawURL, StatusCode: resp.status, Attempts: attempts + 1, Err: ErrPermanent}
			c.logFailure(err)
			return err
		case resp.status < 200 || resp.status >= 300:
			lastErr = &Error{
				Op:         "fetch",
				URL:        rawURL,
				StatusCode: resp.status,
				Err:        fmt.Errorf("%w: %s", ErrTransient, snippet(resp.body)),
			}
		default:
			if err := json.Unmarshal(resp.body, dest); err != nil {
				lastErr = &Error{Op: "decode", URL: rawURL, StatusCode: resp.status, Err: fmt.Errorf("%w: %w", ErrTransient, err)}
			} else {
				return nil
			}
		}

		attempts++
		if attempts >= c.maxAttempts {
			break
		}
		wait := TransientWait(attempts-1, c.jitter(transientJitter))
		logging.WarnWithContext(c.logger, "discogs request failed; retrying", "discogs_retry",
			append(logging.Request(rawURL, attempts),
				logging.Wait(wait),
				logging.String(logging.FieldErrorHint, "transient network or server error"),
				logging.Error(lastErr),
			)...,
		)
		if err := c.sleep(ctx, wait); err != nil {
			return c.cancelled(rawURL, attempts, ctxErrOr(ctx, err))
		}
	}

	var apiErr *Error
	if errors.As(lastErr, &apiErr) {
		apiErr.Attempts = attempts
	}
	c.logFailure(lastErr)
	return lastErr
}

func (c *Client) logFailure(err error) {
	logging.ErrorWithContext(c.logger, "discogs request failed", "discogs_request_failed",
		logging.Int(logging.FieldStatus, StatusCode(err)),
		logging.String(logging.FieldErrorHint, "check the artist id, token and network connectivity"),
		logging.Error(err),
	)
}

type response struct {
	status int
	header http.Header
	body   []byte
}

func (c *Client) do(ctx context.Context, rawURL string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.applyHeaders(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return &response{status: resp.StatusCode, header: resp.Header, body: body}, nil
}

func (c *Client) applyHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Discogs token="+c.token)
	}
}

func (c *Client) endpoint(segments ...string) *url.URL {
	return c.baseURL.JoinPath(segments...)
}

func isPermanentStatus(status int) bool {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return true
	}
	return false
}

func (c *Client) cancelled(rawURL string, attempts int, cause error) error {
	c.logger.Info("discogs request cancelled", logging.String(logging.FieldURL, rawURL))
	return &Error{Op: "fetch", URL: rawURL, Attempts: attempts, Err: fmt.Errorf("%w: %w", ErrCancelled, cause)}
}

func ctxErrOr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

func snippet(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	if text == "" {
		return "empty response body"
	}
	return text
}
