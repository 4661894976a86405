// Package config loads, normalizes, and validates prodscan configuration data.
//
// It supplies repository defaults rooted in the XDG base directories, expands
// user paths (including tilde shortcuts), reads TOML files, and honours
// environment overrides such as DISCOGS_TOKEN and DISCOGS_ARTIST_ID. The Config
// type centralizes every knob the CLI needs, from Discogs pacing to the
// storage backend, allowing the data directory and credentials to be
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
