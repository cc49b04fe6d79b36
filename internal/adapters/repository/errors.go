package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrTimelineNotFound = errors.New("timeline not found")
)
