package stability

import "time"

type observation struct {
	size    int64
	modTime time.Time
}

// tracker counts consecutive identical observations. The count only grows
// when both size and mtime match the previous observation and the size is
// non-zero; anything else resets it.
type tracker struct {
	required int
	count    int
	last     observation
	seen     bool
}

func newTracker(required int) *tracker {
	return &tracker{required: required}
}

// observe records obs and reports whether the threshold has been reached.
func (t *tracker) observe(obs observation) bool {
	unchanged := t.seen && obs.size == t.last.size && obs.modTime.Equal(t.last.modTime)
	if unchanged && obs.size > 0 {
		t.count++
	} else {
		t.count = 0
	}
	t.last = obs
	t.seen = true
	return t.count >= t.required
}
