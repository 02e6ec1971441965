package deps

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
)

// Requirement names an external binary an encoder backend runs.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status is the outcome of looking up one Requirement. Path is the resolved
// executable when Available is set.
type Status struct {
	Requirement
	Available bool
	Path      string
	Detail    string
}

// CheckBinaries looks every requirement up on PATH (or at its explicit path)
// and reports what was found.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		req.Description = strings.TrimSpace(req.Description)
		results = append(results, lookup(req))
	}
	return results
}

func lookup(req Requirement) Status {
	status := Status{Requirement: req}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	path, err := exec.LookPath(req.Command)
	switch {
	case err == nil:
		status.Available = true
		status.Path = path
	case errors.Is(err, fs.ErrPermission):
		status.Detail = fmt.Sprintf("binary %q is not executable", req.Command)
	default:
		status.Detail = fmt.Sprintf("binary %q not found", req.Command)
	}
	return status
}
