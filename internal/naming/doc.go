// Package naming turns a recording's file name into its archive destination.
//
// ParseCaptureTime reads the capture timestamp encoded in the file name, and
// Resolver assigns the recording to the primary or secondary program category
// for that date, adding a numeric suffix once both plain names are taken.
// Resolution only inspects the output tree; it never creates directories.
package naming
