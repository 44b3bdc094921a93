package store

import "errors"

// ErrNotFound means the key is absent. Callers that treat a missing record
// as "nothing saved yet" (tasks, profile) check for it with errors.Is.
var ErrNotFound = errors.New("store: key not found")
