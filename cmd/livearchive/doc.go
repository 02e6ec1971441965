// Package main hosts the livearchive CLI.
//
// The Cobra command tree runs the watcher daemon in the foreground, performs
// one-shot scans of the watch directory, reports and stops a running daemon,
// tails its log, renders the run history and readiness checks, prunes Drapto
// staging, and scaffolds configuration. Heavy lifting lives in the internal
// packages; commands here only resolve configuration and format output.
package main
