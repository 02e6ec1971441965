// Package logs reads the daemon's state log for the `livearchive logs`
// command.
//
// Last returns the final lines of the file with bounded memory; Follow polls
// from an offset and hands each appended line to a callback until the context
// ends. A file that shrinks is read again from the start.
package logs
