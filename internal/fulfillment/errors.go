package fulfillment

import "errors"

// ErrUnknownIntent reports a turn whose intent has no handler.
var ErrUnknownIntent = errors.New("unknown intent")
