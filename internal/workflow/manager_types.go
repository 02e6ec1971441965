package workflow

import (
	"fmt"
	"time"

	"livearchive/internal/naming"
)

// State is a position in a recording's run.
type State string

const (
	StateReceived        State = "received"
	StateStabilizing     State = "stabilizing"
	StateStable          State = "stable"
	StateNamed           State = "named"
	StateTranscoded      State = "transcoded"
	StateMetadataWritten State = "metadata_written"
	StateDone            State = "done"
	StateSkipped         State = "skipped"
	StateFailed          State = "failed"
)

// IsTerminal reports whether no further transition is possible.
func (s State) IsTerminal() bool {
	switch s {
	case StateDone, StateSkipped, StateFailed:
		return true
	default:
		return false
	}
}

func isAllowedTransition(from, to State) bool {
	switch from {
	case StateReceived:
		return to == StateStabilizing || to == StateSkipped
	case StateStabilizing:
		return to == StateStable || to == StateFailed
	case StateStable:
		return to == StateNamed || to == StateFailed
	case StateNamed:
		return to == StateTranscoded || to == StateFailed
	case StateTranscoded:
		return to == StateMetadataWritten || to == StateFailed
	case StateMetadataWritten:
		return to == StateDone
	default:
		return false
	}
}

// Outcome summarizes one run.
type Outcome struct {
	RunID      string
	SourcePath string
	State      State
	// Reason explains a skip.
	Reason string
	// Stage names the step that failed.
	Stage       string
	Slot        naming.Slot
	SidecarPath string
	Err         error
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Archived reports whether the run produced an archive copy.
func (o Outcome) Archived() bool { return o.State == StateDone }

// transition moves the outcome to the next state, rejecting moves the run
// state machine does not allow.
func (o *Outcome) transition(to State) error {
	if !isAllowedTransition(o.State, to) {
		return fmt.Errorf("disallowed run transition %s -> %s", o.State, to)
	}
	o.State = to
	return nil
}

// ScanSummary counts what a startup scan found in the watch directory.
type ScanSummary struct {
	Candidates int
	Archived   int
	Unparsable int
	Processed  int
	Failed     int
}

// StatusSummary is a point-in-time view of the manager.
type StatusSummary struct {
	Running    bool
	Done       int
	Skipped    int
	Failed     int
	LedgerSize int
	LastRun    *Outcome
}
