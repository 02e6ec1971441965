// Package textutil sanitizes configured titles before they become archive
// file names.
package textutil
