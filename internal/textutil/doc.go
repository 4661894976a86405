// Package textutil provides small text helpers shared by the credit pipeline
// and the CLI.
//
// The primary use cases are:
//   - Title-casing free-text role fragments for display
//   - Stripping Discogs disambiguation suffixes such as "(2)" from artist names
//   - Building filesystem-safe tokens for export file names
package textutil
