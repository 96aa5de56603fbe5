package lookup

import "errors"

// Sentinel kinds for lookup failures.
var (
	// ErrNotFound reports that no record carries the requested name or id.
	ErrNotFound = errors.New("record not found")

	// ErrStore reports that the store could not answer.
	ErrStore = errors.New("store unavailable")
)
