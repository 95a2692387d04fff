package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a record or lookup does not exist, or is
	// outside the caller's visible scope.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write violates a uniqueness or
	// referential constraint in storage.
	ErrConflict = errors.New("conflict")
	// ErrForbidden is returned when the principal lacks the permission for an action.
	ErrForbidden = errors.New("forbidden")
	// ErrSiteNotFound is returned by a site service when no site matches the query.
	ErrSiteNotFound = errors.New("site not found")
)

// UpstreamError reports a site service response other than success or not found.
type UpstreamError struct {
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("upstream request failed: %v", e.Err)
	}
	return fmt.Sprintf("upstream request failed with status %d", e.StatusCode)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
