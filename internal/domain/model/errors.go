package model

import "errors"

// Sentinel kinds for model errors.
var (
	ErrInvalidDate    = errors.New("invalid date")
	ErrUnknownContext = errors.New("unknown context name")
)
