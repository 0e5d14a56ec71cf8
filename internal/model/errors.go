package model

import "errors"

// ErrDuplicate is returned by stores when a uniqueness rule rejects a write,
// e.g. a second pending invitation for the same pair of teachers.
var ErrDuplicate = errors.New("duplicate record")
