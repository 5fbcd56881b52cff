package journal

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means no caller identity was supplied. Checked
	// before any computation; surfaced upstream as "please sign in".
	ErrUnauthenticated = errors.New("no authenticated user found, please sign in first")

	// ErrNotFound covers rows that are absent or owned by another caller.
	ErrNotFound = errors.New("record not found")

	ErrInvalidInput = errors.New("invalid trade input")
)

// PartialWriteError reports a multi-step write where the parent row
// committed but a dependent step failed. The parent is not rolled back;
// the caller can retry the failed step idempotently.
type PartialWriteError struct {
	ParentID string
	Step     string
	Err      error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("partial write: %s failed for %s: %v", e.Step, e.ParentID, e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}
