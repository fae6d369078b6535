package lazyload

import (
	log "github.com/sirupsen/logrus"

	"lazy14/pkg/css"
	"lazy14/pkg/events"
	"lazy14/pkg/html"
)

// Manager lazily loads the images of one container.
type Manager struct {
	container *html.Node
	layout    LayoutProvider
	config    *Config
	trackers  []*Tracker
	subs      []events.Subscription
}

// New creates a manager for container and hides every <img> inside it. A
// nil container yields an inert manager with no trackers and no listeners.
// Scroll and window load listeners are registered on bus only when the
// container's computed overflow is "scroll"; bus may be nil.
//
// layout must already have laid out the document containing container.
func New(container *html.Node, layout LayoutProvider, bus EventBus, opts ...Option) *Manager {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	m := &Manager{config: &cfg}
	if container == nil {
		return m
	}

	m.container = container
	m.layout = layout
	for _, img := range container.ElementsByTagName("img") {
		m.trackers = append(m.trackers, newTracker(img, m.config, container, layout))
	}

	if bus != nil && layout.ComputedStyle(container, "overflow") == "scroll" {
		update := func(events.Event) { m.Update() }
		m.subs = append(m.subs,
			bus.On(container, events.Scroll, update),
			bus.Once(events.Window, events.Load, update),
		)
	}

	log.WithFields(log.Fields{
		"container": describe(container),
		"images":    len(m.trackers),
		"listening": len(m.subs) > 0,
	}).Debug("lazyload: manager created")
	return m
}

// NewFromSelector resolves ref with FindContainer and calls New.
func NewFromSelector(doc *html.Document, ref string, layout LayoutProvider, bus EventBus, opts ...Option) *Manager {
	return New(FindContainer(doc, ref), layout, bus, opts...)
}

// FindContainer returns the first element matching the CSS selector ref,
// or else the element whose id is ref. It returns nil when neither exists.
func FindContainer(doc *html.Document, ref string) *html.Node {
	if doc == nil || ref == "" {
		return nil
	}
	if n, err := css.QuerySelector(doc.Root, ref); err == nil && n != nil {
		return n
	}
	return doc.ElementByID(ref)
}

// Update reveals every tracked image that is now visible.
func (m *Manager) Update() {
	revealed := 0
	for _, t := range m.trackers {
		if t.ShowIfVisible() {
			revealed++
		}
	}
	if revealed > 0 {
		log.Debugf("lazyload: %d image(s) revealed, %d pending", revealed, m.Pending())
	}
}

// SetThreshold changes the threshold used by every tracker from the next
// Update on.
func (m *Manager) SetThreshold(px int) {
	if m.Inert() {
		return
	}
	m.config.Threshold = px
}

// Close removes the listeners registered by New. It is safe to call more
// than once.
func (m *Manager) Close() {
	for _, s := range m.subs {
		s.Remove()
	}
	m.subs = nil
}

// Trackers returns the trackers in document order.
func (m *Manager) Trackers() []*Tracker {
	return m.trackers
}

// Container returns the managed container, or nil for an inert manager.
func (m *Manager) Container() *html.Node {
	return m.container
}

// Config returns a copy of the current configuration.
func (m *Manager) Config() Config {
	return *m.config
}

// Inert reports whether the container failed to resolve.
func (m *Manager) Inert() bool {
	return m.container == nil
}

// Pending returns how many tracked images are still hidden.
func (m *Manager) Pending() int {
	n := 0
	for _, t := range m.trackers {
		if !t.loaded {
			n++
		}
	}
	return n
}

func describe(n *html.Node) string {
	if id, ok := n.GetAttribute("id"); ok && id != "" {
		return n.TagName + "#" + id
	}
	return n.TagName
}
