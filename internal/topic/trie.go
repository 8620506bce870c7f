//file: internal/topic/trie.go
package topic

import "strings"

// Segment is a single node of the topic trie: one '/'-delimited path
// component (the sentinel root's label is empty and carries no parent).
// Presence of payload marks a segment as a stored entry; its absence
// marks it a mere interior node kept alive by descendants.
type Segment struct {
	label      string
	parent     *Segment
	children   map[string]*Segment
	payload    any
	hasPayload bool
}

// Label returns this segment's path component. The sentinel's label is
// always the empty string.
func (s *Segment) Label() string { return s.label }

// Parent returns the owning segment, or nil for the sentinel.
func (s *Segment) Parent() *Segment { return s.parent }

// SetPayload attaches caller-owned data to the segment, marking it as a
// stored entry. The index never inspects, copies, or frees payload.
func (s *Segment) SetPayload(p any) {
	s.payload = p
	s.hasPayload = true
}

// Payload returns the segment's payload and whether one has been set.
func (s *Segment) Payload() (any, bool) {
	return s.payload, s.hasPayload
}

// ClearPayload removes the segment's payload without unlinking it from
// the tree. Callers who want the segment collapsed must clear payload
// before calling Remove.
func (s *Segment) ClearPayload() {
	s.payload = nil
	s.hasPayload = false
}

func (s *Segment) retained() bool {
	return s.hasPayload || len(s.children) > 0
}

// Remove unlinks s from its parent if it is no longer needed (no
// payload, no children), then applies the same rule recursively to the
// parent, collapsing empty interior ancestors. Collapse stops at the
// first retained ancestor or at the sentinel, which Remove never
// unlinks -- the sentinel is destroyed only by discarding the Index.
//
// The Go allocator has no failure mode for a map delete, so this never
// returns a non-nil error; the signature matches spec.md's "remove
// propagates OutOfMemory from its rebalancing" contract for API parity.
func (s *Segment) Remove() error {
	if s.parent == nil {
		return nil
	}
	if s.retained() {
		return nil
	}
	parent := s.parent
	delete(parent.children, s.label)
	s.parent = nil
	return parent.Remove()
}

// Index is the root handle for a topic trie. The zero value is not
// usable; construct with NewIndex.
type Index struct {
	root         *Segment
	oomCountdown int
}

// NewIndex creates a new sentinel root and returns the index anchored on
// it. The sentinel has no label, no parent, and no payload until a
// caller explicitly sets one.
func NewIndex() *Index {
	return &Index{
		root:         &Segment{children: make(map[string]*Segment)},
		oomCountdown: -1,
	}
}

// Root returns the sentinel segment anchoring the index.
func (ix *Index) Root() *Segment { return ix.root }

// FailNextAllocAfter arranges for the nth subsequent segment allocation
// performed by FindOrAdd (0-based, counting only allocations that would
// otherwise succeed) to fail with ErrOutOfMemory instead, exercising the
// rollback path deterministically. Pass a negative n to disable
// simulated failures; this is the default.
func (ix *Index) FailNextAllocAfter(n int) {
	ix.oomCountdown = n
}

func (ix *Index) shouldFailAlloc() bool {
	if ix.oomCountdown < 0 {
		return false
	}
	if ix.oomCountdown == 0 {
		ix.oomCountdown = -1
		return true
	}
	ix.oomCountdown--
	return false
}

// FindOrAdd splits topicStr on '/' and descends from the root one
// segment at a time. If create is false and a segment is missing,
// FindOrAdd returns ErrNotFound without mutating the tree. If create is
// true, missing segments are allocated as needed and the final segment
// is returned; the caller sets payload on it directly. On simulated
// allocation failure, every segment created during this call is rolled
// back -- freed if it ends up with neither payload nor children -- and
// the tree is left exactly as it was before the call.
func (ix *Index) FindOrAdd(topicStr string, create bool) (*Segment, error) {
	segments := strings.Split(topicStr, "/")
	current := ix.root
	var created []*Segment

	for _, label := range segments {
		next, ok := current.children[label]
		if !ok {
			if !create {
				return nil, ErrNotFound
			}
			if ix.shouldFailAlloc() {
				rollbackCreated(created)
				return nil, ErrOutOfMemory
			}
			next = &Segment{
				label:    label,
				parent:   current,
				children: make(map[string]*Segment),
			}
			current.children[label] = next
			created = append(created, next)
		}
		current = next
	}

	return current, nil
}

// rollbackCreated undoes the segment creations of a failed FindOrAdd
// call. Since a single call only ever creates a linear chain (each new
// segment's only child, if any, is the next one created), walking the
// chain in reverse and dropping each childless, payload-less tail
// segment correctly cascades back to the first segment that already
// existed before the call.
func rollbackCreated(created []*Segment) {
	for i := len(created) - 1; i >= 0; i-- {
		seg := created[i]
		if seg.retained() {
			continue
		}
		delete(seg.parent.children, seg.label)
		seg.parent = nil
	}
}
