//file: internal/topic/matcher.go
package topic

import (
	"sort"
	"strings"
)

// IterFunc is invoked for each segment visited by Walk or MatchingIter.
// topicStr is the full topic reconstructed from the sentinel down to
// seg, valid only for the duration of the call. A segment without a
// stored payload is an interior node kept alive by descendants; check
// seg.Payload()'s second return value to tell the two apart.
type IterFunc func(topicStr string, seg *Segment)

func sortedLabels(children map[string]*Segment) []string {
	labels := make([]string, 0, len(children))
	for l := range children {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

func joinTopic(path []string) string {
	return strings.Join(path, "/")
}

// extend appends label to path, forcing a fresh backing array so that a
// slice handed to a callback (or held across sibling recursive calls)
// is never silently overwritten by a later sibling's append.
func extend(path []string, label string) []string {
	return append(path[:len(path):len(path)], label)
}

// Walk visits every segment reachable from the root -- stored or
// interior -- in a deterministic pre-order DFS over children in sorted
// label order. The sentinel itself is not visited; it has no topic
// string of its own, and any payload set directly on Root() is reached
// via ix.Root().Payload() instead.
func (ix *Index) Walk(cb IterFunc) {
	sweep(ix.root, nil, true, false, cb)
}

// sweep is the full-traversal primitive shared by Walk and the '#'
// wildcard's descendant enumeration. top is true only when node is the
// sentinel; when both top and skipSys hold, children whose label begins
// with '$' -- and everything beneath them -- are skipped, reproducing
// the MQTT convention that a bare '#' or '+' subscription does not see
// broker-internal topics.
func sweep(node *Segment, path []string, top, skipSys bool, cb IterFunc) {
	for _, label := range sortedLabels(node.children) {
		if top && skipSys && strings.HasPrefix(label, "$") {
			continue
		}
		child := node.children[label]
		childPath := extend(path, label)
		cb(joinTopic(childPath), child)
		sweep(child, childPath, false, skipSys, cb)
	}
}

// MatchingIter visits every segment whose accumulated topic intersects
// the topic set denoted by pattern. pattern and the stored topics may
// each contain '+' and '#'; matching is symmetric in both directions.
// Emission order is deterministic per run but not part of the contract.
// cb must not mutate the tree.
func (ix *Index) MatchingIter(pattern string, cb IterFunc) {
	patSegs := strings.Split(pattern, "/")
	matchNode(ix.root, patSegs, nil, true, cb)
}

// matchNode walks one (node, pattern-suffix) state of the matcher state
// machine described by spec.md's matcher case analysis, translated
// directly from mqtt_topic_matching_iter in the original C
// implementation. top is true only for the initial call (node is the
// sentinel); it gates the sysspace rule, which applies only there.
func matchNode(node *Segment, pat []string, path []string, top bool, cb IterFunc) {
	if len(pat) == 0 {
		// Pattern exhausted: emit the current node, plus its '#'
		// child if present -- a stored '#' also matches the
		// terminating position of the query pattern.
		cb(joinTopic(path), node)
		if hash, ok := node.children["#"]; ok {
			cb(joinTopic(extend(path, "#")), hash)
		}
		return
	}

	head, rest := pat[0], pat[1:]

	switch head {
	case "#":
		// '#' matches the parent position itself (unless that
		// position is the sentinel, which carries no topic of its
		// own) plus every stored descendant.
		if !top {
			cb(joinTopic(path), node)
		}
		sweep(node, path, top, true, cb)

	case "+":
		// Fork into every child, recursing with the remaining
		// pattern. At the sentinel, '$'-prefixed children are
		// invisible to a bare '+'.
		for _, label := range sortedLabels(node.children) {
			if top && strings.HasPrefix(label, "$") {
				continue
			}
			child := node.children[label]
			matchNode(child, rest, extend(path, label), false, cb)
		}

	default:
		// Literal segment (including the empty string between
		// consecutive '/'). Three independent forks: a stored '+'
		// matches our literal and recurses; a stored '#' matches
		// any continuation and is emitted without further
		// recursion; an exact label match recurses.
		if plus, ok := node.children["+"]; ok {
			matchNode(plus, rest, extend(path, "+"), false, cb)
		}
		if hash, ok := node.children["#"]; ok {
			cb(joinTopic(extend(path, "#")), hash)
		}
		if lit, ok := node.children[head]; ok {
			matchNode(lit, rest, extend(path, head), false, cb)
		}
	}
}
