package services

import (
	"errors"
	"strings"
)

var (
	// ErrSkipped marks inputs that were deliberately not processed (wrong
	// extension, already handled). It is an outcome, not a failure.
	ErrSkipped   = errors.New("skipped")
	ErrFormat    = errors.New("format error")
	ErrIO        = errors.New("io error")
	ErrTimeout   = errors.New("timeout")
	ErrTranscode = errors.New("transcode error")
)

// Failure kinds reported in logs and the run journal.
const (
	KindSkipped   = "skipped"
	KindFormat    = "format"
	KindIO        = "io"
	KindTimeout   = "timeout"
	KindTranscode = "transcode"
	KindCanceled  = "canceled"
	KindUnknown   = "unknown"
)

// StageError carries the pipeline stage and operation alongside a marker
// sentinel so callers can classify failures with errors.Is.
type StageError struct {
	Marker    error
	Stage     string
	Operation string
	Message   string
	Err       error
}

func (e *StageError) Error() string {
	var b strings.Builder
	b.WriteString(e.Marker.Error())
	b.WriteString(": ")
	b.WriteString(buildDetail(e.Stage, e.Operation, e.Message))
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *StageError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Marker}
	}
	return []error{e.Marker, e.Err}
}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrIO
	}
	return &StageError{
		Marker:    marker,
		Stage:     strings.TrimSpace(stage),
		Operation: strings.TrimSpace(operation),
		Message:   strings.TrimSpace(message),
		Err:       err,
	}
}

// ErrorDetails is the structured view of a wrapped error used for logging.
type ErrorDetails struct {
	Kind      string
	Stage     string
	Operation string
	Message   string
	Cause     error
}

// Details extracts stage metadata from err. Errors not produced by Wrap report
// only their kind and message.
func Details(err error) ErrorDetails {
	if err == nil {
		return ErrorDetails{}
	}
	details := ErrorDetails{Kind: Kind(err), Message: err.Error()}
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		details.Stage = stageErr.Stage
		details.Operation = stageErr.Operation
		if stageErr.Message != "" {
			details.Message = stageErr.Message
		}
		details.Cause = stageErr.Err
	}
	return details
}

// Kind maps err to a short failure kind.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSkipped):
		return KindSkipped
	case errors.Is(err, ErrFormat):
		return KindFormat
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrTranscode):
		return KindTranscode
	case errors.Is(err, ErrIO):
		return KindIO
	case isCanceled(err):
		return KindCanceled
	default:
		return KindUnknown
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage != "" {
		parts = append(parts, stage)
	}
	if operation != "" {
		parts = append(parts, operation)
	}
	if message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
