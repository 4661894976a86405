// Package scan drives incremental sync cycles for one target artist.
//
// A cycle first retries the persisted failure queue, then lists the artist's
// discography for ids above the collection watermark, resolves every new stub
// sequentially, merges results by (id, isMaster), deduplicates and persists.
// Stopping is cooperative: cancelling the context queues whatever was not
// processed so the next cycle picks it up. Everything merged before the stop
// is kept.
package scan
