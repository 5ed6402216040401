package service

import (
	"sync"

	"blocksgraph/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Change Notifier — decouples the engine from the renderer
// ─────────────────────────────────────────────────────────────

// Handler receives one ChangeSet per committed mutation. Handlers are
// read-only with respect to the state they observe; a handler that
// mutates the graph has that change's delivery queued until the
// in-flight delivery finishes.
type Handler func(domain.ChangeSet)

type subscriber struct {
	fn      Handler
	removed bool
}

// Notifier delivers change sets to subscribers synchronously, in
// commit order, with no coalescing across unrelated mutations.
type Notifier struct {
	mu         sync.Mutex
	subs       []*subscriber
	queue      []domain.ChangeSet
	delivering bool
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

// Subscribe registers a handler and returns its unsubscribe func.
// Unsubscribing during delivery is safe: the handler receives no
// further events once the func returns.
func (n *Notifier) Subscribe(fn Handler) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	sub := &subscriber{fn: fn}
	n.subs = append(n.subs, sub)
	return func() {
		n.mu.Lock()
		sub.removed = true
		n.mu.Unlock()
	}
}

// Emit delivers the change set to every subscriber. Emissions that
// arrive while a delivery is in progress (from a handler reacting to
// the event) are queued and delivered afterwards, preserving order.
func (n *Notifier) Emit(cs domain.ChangeSet) {
	if cs.Empty() {
		return
	}
	n.mu.Lock()
	n.queue = append(n.queue, cs)
	if n.delivering {
		n.mu.Unlock()
		return
	}
	n.delivering = true
	for len(n.queue) > 0 {
		next := n.queue[0]
		n.queue = n.queue[1:]
		subs := make([]*subscriber, len(n.subs))
		copy(subs, n.subs)
		n.mu.Unlock()

		for _, sub := range subs {
			n.mu.Lock()
			skip := sub.removed
			n.mu.Unlock()
			if !skip {
				sub.fn(next)
			}
		}

		n.mu.Lock()
	}
	n.delivering = false
	n.compactLocked()
	n.mu.Unlock()
}

// compactLocked drops unsubscribed handlers. Caller holds mu.
func (n *Notifier) compactLocked() {
	kept := n.subs[:0]
	for _, sub := range n.subs {
		if !sub.removed {
			kept = append(kept, sub)
		}
	}
	n.subs = kept
}

// Recorder is a test-friendly subscriber that records every delivery.
type Recorder struct {
	Events []domain.ChangeSet
}

// Record is a Handler; pass it to Subscribe.
func (r *Recorder) Record(cs domain.ChangeSet) {
	r.Events = append(r.Events, cs)
}

// Last returns the most recent change set, or a zero one.
func (r *Recorder) Last() domain.ChangeSet {
	if len(r.Events) == 0 {
		return domain.ChangeSet{}
	}
	return r.Events[len(r.Events)-1]
}
