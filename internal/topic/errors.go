//file: internal/topic/errors.go
package topic

import "errors"

// ErrOutOfMemory is returned by FindOrAdd when a simulated allocation
// (see Index.FailNextAllocAfter) fails partway through a call. The tree is
// left exactly as it was before the call. Remove never returns it.
var ErrOutOfMemory = errors.New("topic: out of memory")

// ErrNotFound is returned by FindOrAdd when create is false and the topic
// does not fully resolve to an existing segment.
var ErrNotFound = errors.New("topic: not found")

// ErrInvalidInput is never raised by the index itself; it exists for
// callers that reject a string failing Validate using the same error
// vocabulary as the rest of this package (internal/bridge's
// Registry.AddSubscription returns it for a malformed filter). Insertion
// never re-validates its input.
var ErrInvalidInput = errors.New("topic: invalid input")
