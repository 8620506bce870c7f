//file: internal/topic/doc.go

// Package topic implements an in-memory, wildcard-aware index over
// hierarchical, slash-delimited topic names, of the kind used by
// publish/subscribe brokers. It supports insertion and lookup, removal
// with interior-node collapse, and match iteration that treats both the
// stored topic and the query pattern symmetrically, so the same
// primitive drives publish-against-subscriptions matching and
// subscription-against-retained-topics matching.
package topic
