package sharestore

import "errors"

// ErrNotFound is returned when a share id is absent or its record has
// expired. It is a normal outcome, not a failure condition.
var ErrNotFound = errors.New("shared card not found")

// ErrStorageWrite marks a failed durable write during Put. Writes are
// never retried; the caller sees a failed share creation.
var ErrStorageWrite = errors.New("storage write failed")
