// Package events is a synchronous event dispatcher for DOM-style events:
// listeners are registered per (target, type) and invoked inline, in
// registration order, on the goroutine that dispatches.
package events

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Common event types.
const (
	Scroll = "scroll"
	Load   = "load"
)

// Target identifies what an event is dispatched to. Element targets are
// *html.Node values; the page itself is Window. Targets must be comparable.
type Target any

type windowTarget struct{ name string }

func (w *windowTarget) String() string { return w.name }

// Window is the global window target.
var Window Target = &windowTarget{name: "window"}

// Event is passed to handlers.
type Event struct {
	Type   string
	Target Target
}

// Handler handles an event.
type Handler func(Event)

type key struct {
	target    Target
	eventType string
}

type listener struct {
	fn      Handler
	once    bool
	removed bool
}

// Dispatcher holds listeners and dispatches events to them.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[key][]*listener
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: make(map[key][]*listener)}
}

// Subscription is the handle of one registered listener.
type Subscription struct {
	d *Dispatcher
	k key
	l *listener
}

// Remove deregisters the listener. It reports whether the listener was
// still registered; removing twice, or removing the zero Subscription, is a
// no-op.
func (s Subscription) Remove() bool {
	if s.d == nil || s.l == nil {
		return false
	}
	return s.d.remove(s.k, s.l)
}

// On registers fn for eventType events on target.
func (d *Dispatcher) On(target Target, eventType string, fn Handler) Subscription {
	return d.add(target, eventType, fn, false)
}

// Once registers fn to run for the next eventType event on target only.
func (d *Dispatcher) Once(target Target, eventType string, fn Handler) Subscription {
	return d.add(target, eventType, fn, true)
}

func (d *Dispatcher) add(target Target, eventType string, fn Handler, once bool) Subscription {
	k := key{target: target, eventType: eventType}
	l := &listener{fn: fn, once: once}

	d.mu.Lock()
	d.listeners[k] = append(d.listeners[k], l)
	d.mu.Unlock()

	return Subscription{d: d, k: k, l: l}
}

func (d *Dispatcher) remove(k key, l *listener) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if l.removed {
		return false
	}
	l.removed = true

	list := d.listeners[k]
	for i, other := range list {
		if other == l {
			// Copy so that a dispatch iterating the old slice is unaffected.
			next := make([]*listener, 0, len(list)-1)
			next = append(next, list[:i]...)
			next = append(next, list[i+1:]...)
			if len(next) == 0 {
				delete(d.listeners, k)
			} else {
				d.listeners[k] = next
			}
			break
		}
	}
	return true
}

// Dispatch invokes the listeners registered for eventType on target and
// returns how many ran. Listeners added while dispatching wait for the next
// event; listeners removed while dispatching do not run.
func (d *Dispatcher) Dispatch(target Target, eventType string) int {
	k := key{target: target, eventType: eventType}

	d.mu.RLock()
	list := d.listeners[k]
	d.mu.RUnlock()

	ev := Event{Type: eventType, Target: target}
	ran := 0
	for _, l := range list {
		if l.once {
			if !d.remove(k, l) {
				continue
			}
		} else if d.isRemoved(l) {
			continue
		}
		l.fn(ev)
		ran++
	}
	if ran > 0 {
		log.Tracef("events: %s dispatched to %d listener(s)", eventType, ran)
	}
	return ran
}

func (d *Dispatcher) isRemoved(l *listener) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return l.removed
}

// ListenerCount returns the number of listeners for eventType on target.
func (d *Dispatcher) ListenerCount(target Target, eventType string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners[key{target: target, eventType: eventType}])
}
