package temporal

import "errors"

// Sentinel kinds for temporal domain errors. These allow errors.Is/As from callers.
var (
	ErrValidation    = errors.New("invalid temporal point")
	ErrDuplicateID   = errors.New("duplicate event id")
	ErrEmptyTimeline = errors.New("timeline has no points")
)
