// Package transcode wraps the encoders that produce archive files.
//
// The FFmpeg backend shells out to the ffmpeg CLI with a QSV AV1 encode and
// never overwrites an existing target. The Drapto backend drives the Drapto
// library in a staging directory and moves the finished file into place.
// Both remove a partially written target when the encode fails and never
// modify the source recording.
package transcode
