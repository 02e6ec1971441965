// Package workflow carries recordings from the watch directory into the
// archive.
//
// The Manager owns the dedup ledger and drives one recording at a time
// through a fixed sequence: dedup check, stability wait, capture date
// extraction, naming, transcode, sidecar write, and finally a ledger update.
// Each pass is a run with its own id; the run's state advances through the
// State constants and ends as done, skipped, or failed.
//
// Events arrive on a single channel fed by the watcher. A startup scan feeds
// recordings that were dropped while the daemon was down through the same
// path. Failures are logged with the stage and source path and never stop the
// loop; only context cancellation does.
package workflow
