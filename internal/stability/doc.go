// Package stability decides when a recording has finished being written.
//
// A Detector polls size and modification time after an initial grace delay and
// reports success once both have been unchanged, with a non-zero size, for a
// configured number of consecutive checks, followed by a settle period.
package stability
