// Package services defines shared utilities consumed by the scan stages and the
// Discogs integration.
//
// Key responsibilities:
//   - Context helpers that stamp catalog item IDs, item kinds, scan stages,
//     session identifiers, and the target artist for logging.
//   - Structured error markers plus the Wrap helper that let the orchestrator
//     decide how a failure is recorded in the failure queue.
//
// Use these helpers when wiring new stage logic so operational behaviour (error
// handling, observability, retries) stays uniform across the pipeline.
package services
