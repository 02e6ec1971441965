// Package journal records the outcome of every archive run in a SQLite
// database under the state directory.
//
// The journal backs the history command and lets operators find recordings
// that failed or were left half-finished. It is append-mostly: a run is saved
// when it starts and updated once when it reaches a terminal state. Nothing
// reads the journal to make processing decisions; duplicate suppression lives
// in the in-memory ledger.
package journal
