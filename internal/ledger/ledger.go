// Package ledger remembers which recordings the running process has already
// archived so duplicate filesystem events do not trigger a second run.
package ledger

import (
	"path/filepath"
	"sync"
)

// DefaultCap is the entry count above which the ledger is cleared.
const DefaultCap = 1000

// Ledger is a bounded set of canonical source paths. Once a Mark pushes the
// size past the cap the whole set is discarded.
type Ledger struct {
	mu      sync.Mutex
	cap     int
	entries map[string]struct{}
	clears  int
}

// New returns an empty ledger. A non-positive capacity selects DefaultCap.
func New(capacity int) *Ledger {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	return &Ledger{cap: capacity, entries: make(map[string]struct{})}
}

// Seen reports whether path was marked since the last clear.
func (l *Ledger) Seen(path string) bool {
	key := Canonical(path)
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.entries[key]
	return ok
}

// Mark records path and clears the ledger if it grew past the cap.
func (l *Ledger) Mark(path string) {
	key := Canonical(path)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[key] = struct{}{}
	if len(l.entries) > l.cap {
		l.entries = make(map[string]struct{})
		l.clears++
	}
}

// Len returns the number of remembered paths.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Clears returns how many times the ledger overflowed.
func (l *Ledger) Clears() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.clears
}

// Canonical resolves path to an absolute, symlink-free, cleaned form. When the
// file cannot be resolved (for example it was already removed) the cleaned
// absolute path is used so lookups stay consistent.
func Canonical(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return abs
	}
	return resolved
}
