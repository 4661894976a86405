// Package discogs is a small client for the parts of the Discogs REST API the
// scanner consumes: artist lookups, artist release listings, masters, master
// versions, and releases.
//
// Every request goes through FetchJSON, which paces calls with a token bucket,
// retries transient failures with exponential backoff and jitter, waits out
// 429 responses without spending the attempt budget, and fails fast on
// 401/403/404. Cancellation of the supplied context is observed before each
// request, after each response, and around every wait, and surfaces as an
// error matching both ErrCancelled and context.Canceled.
package discogs
