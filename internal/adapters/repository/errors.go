package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound     = errors.New("document not found")
	ErrClosed       = errors.New("store closed")
	ErrInvalidField = errors.New("invalid field path")
	ErrInvalidDoc   = errors.New("invalid document")
	ErrDecode       = errors.New("decode document")
)
