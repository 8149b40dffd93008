package domain

import "fmt"

// CollaboratorError wraps a failure from an external collaborator (preflight
// profiler or writer). A first-pass occurrence aborts the job; a rescue-pass
// occurrence also aborts, never a second rescue.
type CollaboratorError struct {
	Collaborator string // "preflight" or "writer"
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s collaborator: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// NewCollaboratorError wraps err as a failure of the named collaborator.
func NewCollaboratorError(collaborator string, err error) *CollaboratorError {
	return &CollaboratorError{Collaborator: collaborator, Err: err}
}
