// Package staging inspects and prunes the Drapto work directories left in
// the encoder staging directory.
//
// Every library encode runs in its own encode-* directory that the transcoder
// removes when it returns. A process killed mid-encode leaves the directory
// behind; the daemon prunes old ones at startup and `livearchive staging`
// exposes the same operations by hand.
package staging
