package reconcile

import (
	"errors"
	"fmt"
)

// ErrUnmappedProject means a record points at a project that is missing
// from the tracking-service skeleton.
var ErrUnmappedProject = errors.New("project not found in tracking service")

type WarningKind string

const (
	WarnUnmappedAssignment    WarningKind = "unmapped-assignment"
	WarnUnmappedTimeEntry     WarningKind = "unmapped-time-entry"
	WarnOverlappingAssignment WarningKind = "overlapping-assignment"
	WarnInvalidAssignment     WarningKind = "invalid-assignment"
)

// Warning is a record skipped or merged questionably during reconciliation.
type Warning struct {
	Kind      WarningKind
	ProjectID int64
	Err       error
}

func (w Warning) Error() string {
	return fmt.Sprintf("%s (project %d): %v", w.Kind, w.ProjectID, w.Err)
}

func (w Warning) Unwrap() error { return w.Err }
