package document

import "reflect"

// ─────────────────────────────────────────────────────────────
// Subscriptions — renderer modules subscribe with a selector
// and an equality check so unrelated store changes cost nothing.
// ─────────────────────────────────────────────────────────────

// Selector extracts a slice of store state. Selectors must return copies;
// subscribers hold the previous result across notifications.
type Selector func(s *Store) any

// EqualityFn compares two selector results. Returning true skips the callback.
type EqualityFn func(prev, next any) bool

// SubscribeOptions tunes a subscription.
type SubscribeOptions struct {
	// FireImmediately invokes the callback once with the current selection
	// before Subscribe returns.
	FireImmediately bool
	// Equality defaults to reflect.DeepEqual when nil.
	Equality EqualityFn
}

type subscription struct {
	selector Selector
	callback func(slice any)
	equality EqualityFn
	prev     any
}

// Subscribe registers a callback fired after every outermost mutation whose
// selected slice changed. The baseline slice is captured at subscribe time,
// so the first notification only fires when something actually changed. The
// returned function unsubscribes.
func (s *Store) Subscribe(selector Selector, callback func(slice any), opts SubscribeOptions) func() {
	eq := opts.Equality
	if eq == nil {
		eq = func(prev, next any) bool { return reflect.DeepEqual(prev, next) }
	}
	sub := &subscription{selector: selector, callback: callback, equality: eq, prev: selector(s)}
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = sub

	if opts.FireImmediately {
		callback(sub.prev)
	}
	return func() {
		delete(s.subscribers, id)
	}
}

// notify runs every subscriber whose slice changed. Called only when no batch
// is open, so subscribers observe atomic state.
func (s *Store) notify() {
	for _, sub := range s.subscribers {
		next := sub.selector(s)
		if sub.equality(sub.prev, next) {
			continue
		}
		sub.prev = next
		sub.callback(next)
	}
}
