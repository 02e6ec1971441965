// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and source paths for
//     logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (format, io, timeout, transcode) consistently across the pipeline.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform.
package services
