//file: internal/bridge/registry.go
package bridge

import (
	"sync"

	"topicmux/internal/metrics"
	"topicmux/internal/topic"
)

// Subscription is one active relay rule's view of a matched topic filter:
// the filter string and the QoS it was registered with.
type Subscription struct {
	Topic string
	QoS   byte
}

// Registry is the bridge's subscription table. It replaces the
// exact-match map plus a separate bespoke wildcard tree with a single
// topic.Index: every stored filter, wildcard or not, lives in one
// structure, looked up and matched the same way.
type Registry struct {
	mu      sync.RWMutex
	idx     *topic.Index
	metrics *metrics.Metrics
}

// NewRegistry creates an empty registry. metrics may be nil.
func NewRegistry(m *metrics.Metrics) *Registry {
	return &Registry{idx: topic.NewIndex(), metrics: m}
}

// AddSubscription validates and stores a topic filter with its QoS.
// Unlike the two-function split of validateTopicFilter/validateTopicName,
// a single Validate call covers both filters and plain topics: the
// grammar it accepts already permits '+' and '#' only in filter
// position.
func (r *Registry) AddSubscription(filter string, qos byte) error {
	if !topic.Validate(filter) {
		if r.metrics != nil {
			r.metrics.IncIndexRejections()
		}
		return topic.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seg, err := r.idx.FindOrAdd(filter, true)
	if err != nil {
		return err
	}
	seg.SetPayload(qos)

	if r.metrics != nil {
		r.metrics.IncIndexInserts()
	}
	return nil
}

// RemoveSubscription clears and collapses a previously added filter. It
// is a no-op if the filter was never added.
func (r *Registry) RemoveSubscription(filter string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seg, err := r.idx.FindOrAdd(filter, false)
	if err != nil {
		return nil
	}
	seg.ClearPayload()
	if err := seg.Remove(); err != nil {
		return err
	}

	if r.metrics != nil {
		r.metrics.IncIndexRemovals()
	}
	return nil
}

// Match returns every stored filter whose topic set intersects topicStr,
// the registry's equivalent of the teacher's TopicTree.Match.
func (r *Registry) Match(topicStr string) []Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []Subscription
	r.idx.MatchingIter(topicStr, func(t string, seg *topic.Segment) {
		p, ok := seg.Payload()
		if !ok {
			return
		}
		matches = append(matches, Subscription{Topic: t, QoS: p.(byte)})
	})

	if r.metrics != nil {
		r.metrics.AddMatchEmissions(len(matches))
	}
	return matches
}

// GetSubscriptions returns every stored filter and its QoS.
func (r *Registry) GetSubscriptions() map[string]byte {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subs := make(map[string]byte)
	r.idx.Walk(func(t string, seg *topic.Segment) {
		if p, ok := seg.Payload(); ok {
			subs[t] = p.(byte)
		}
	})
	return subs
}

// Len returns the number of filters currently stored.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	r.idx.Walk(func(_ string, seg *topic.Segment) {
		if _, ok := seg.Payload(); ok {
			n++
		}
	})
	return n
}

// Clear discards every stored filter.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.idx = topic.NewIndex()
}
