package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrInvalidSource     = errors.New("source id must not be empty")
	ErrInvalidSourceName = errors.New("source name must not be empty")
	ErrInvalidScore      = errors.New("alignment score must be between -5 and 5")
	ErrInvalidLabel      = errors.New("new alignment label must not be empty")
	ErrInvalidReason     = errors.New("change reason must not be empty")
)
