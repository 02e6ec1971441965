package logging

import "strings"

// ProgressSampler decides which encode progress updates are worth a log line:
// the first update of each stage, and then one per percent step crossed.
type ProgressSampler struct {
	step   float64
	stage  string
	bucket int
}

// NewProgressSampler returns a sampler emitting every step percent (5 when
// step is not positive).
func NewProgressSampler(step float64) *ProgressSampler {
	if step <= 0 {
		step = 5
	}
	return &ProgressSampler{step: step, bucket: -1}
}

// Observe records an update and reports whether to log it. A negative
// percent means unknown progress and only a stage change emits. A nil
// sampler logs everything.
func (s *ProgressSampler) Observe(stage string, percent float64) bool {
	if s == nil {
		return true
	}
	emit := false
	if stage = strings.TrimSpace(stage); stage != "" && stage != s.stage {
		s.stage = stage
		s.bucket = -1
		emit = true
	}
	if percent < 0 {
		return emit
	}
	if percent > 100 {
		percent = 100
	}
	if bucket := int(percent / s.step); bucket > s.bucket {
		s.bucket = bucket
		emit = true
	}
	return emit
}

// Reset forgets the current stage, as when a new encode starts.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.stage = ""
	s.bucket = -1
}
