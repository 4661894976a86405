// Command prodscan scans an artist's Discogs discography for their
// production credits.
//
// Typical use:
//
//	prodscan config init
//	prodscan artist set "[a12345]"
//	prodscan sync
//	prodscan list --sort credits
//	prodscan export
//
// Interrupting sync with Ctrl-C stops the scan cooperatively; unprocessed
// items are queued and retried on the next sync or with `prodscan retry`.
package main
