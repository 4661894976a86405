package discogs

import (
	"errors"
	"fmt"
)

var (
	// ErrThrottled marks a 429 response. FetchJSON never returns it; it is
	// carried by ThrottleEvent.Err.
	ErrThrottled = errors.New("discogs: rate limited")
	// ErrPermanent marks client errors that are never retried (401, 403, 404).
	ErrPermanent = errors.New("discogs: permanent client error")
	// ErrTransient marks network, 5xx, and decode failures that exhausted their retries.
	ErrTransient = errors.New("discogs: transient failure")
	// ErrCancelled marks a request abandoned because its context was cancelled.
	ErrCancelled = errors.New("discogs: cancelled")
)

// Error describes a failed Discogs request.
type Error struct {
	Op         string
	URL        string
	StatusCode int
	Attempts   int
	Err        error
}

func (e *Error) Error() string {
	msg := "discogs: " + e.Op
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.URL != "" {
		msg += " " + e.URL
	}
	if e.Attempts > 1 {
		msg += fmt.Sprintf(" after %d attempts", e.Attempts)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsPermanent reports whether err is a non-retryable client error.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrPermanent)
}

// IsCancelled reports whether err was caused by context cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// StatusCode extracts the HTTP status from err, or 0 when none was received.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
