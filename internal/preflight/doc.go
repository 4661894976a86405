// Package preflight provides readiness checks for the filesystem, the
// configured store, and the Discogs API.
//
// The CLI "prodscan status" command runs them to show why a sync would fail
// before one is attempted. Checks never retry; each returns a Result with a
// short human-readable detail.
package preflight
