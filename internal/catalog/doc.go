// Package catalog holds the persisted scan records and the pure functions that
// maintain a collection: merge by (id, isMaster), deduplication of key
// releases already represented by their master, the incremental id watermark,
// the failure queue, and sorting for display and export.
package catalog
