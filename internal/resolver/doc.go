// Package resolver turns a listing stub into a catalog item.
//
// Releases take a single request. Masters fetch the master, then its key
// release, and only when the key release does not credit the target artist do
// they walk a bounded number of newer alternate versions. Every request after
// the first is preceded by the sub-fetch delay, and only a failure of the
// top-level request (or a stop) fails the item; sub-fetch errors degrade it.
package resolver
