package repo

import "errors"

// ErrPersistence marks a failed store read or write. Callers surface it as a
// generic retryable failure; the previously persisted state is intact
// because collections are replaced wholesale, never patched in place.
var ErrPersistence = errors.New("persistence failure")
