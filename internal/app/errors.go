package service

import "errors"

// ErrNotStarted reports a turn received before Start or after Stop.
var ErrNotStarted = errors.New("service not started")
