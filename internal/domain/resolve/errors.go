package resolve

import "errors"

// ErrNoSubject means neither the turn nor any live relevant context names a subject.
var ErrNoSubject = errors.New("no subject available")
