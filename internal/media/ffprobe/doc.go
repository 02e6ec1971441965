// Package ffprobe runs ffprobe against a media file and decodes its JSON
// report.
//
// Inspect returns a Result with stream and container metadata. Playable
// checks whether a finished archive has a video stream and a positive
// duration, which is what output verification relies on.
package ffprobe
