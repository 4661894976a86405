// Package store persists scan state in a key/value backend.
//
// KV is the opaque get/set/remove contract. Three backends implement it:
// SQLite (default, a single kv table), Badger (embedded LSM store), and Redis
// (shared networked store). Repository layers the per-artist key namespace and
// JSON encoding on top, so callers work with collections, failure queues,
// last-synced timestamps, and global settings rather than raw bytes.
package store
