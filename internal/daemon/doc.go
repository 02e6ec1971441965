// Package daemon runs the long-lived archiver process.
//
// It holds a flock-based lock in the state directory so only one instance
// watches a given setup, establishes the directory watcher, and feeds its
// events through a bounded channel into the workflow manager. A full channel
// blocks the watcher; events are never dropped.
package daemon
