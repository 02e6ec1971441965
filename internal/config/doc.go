// Package config loads, normalizes, and validates livearchive configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// LIVEARCHIVE_WATCH_DIR and NTFY_TOPIC. The Config type centralizes every knob
// the daemon and CLI need, so the watched directory, archive root, stability
// timings, and encoder settings are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
