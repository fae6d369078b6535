package lazyload

import (
	"lazy14/pkg/events"
	"lazy14/pkg/html"
	"lazy14/pkg/layout"
)

// LayoutProvider answers the geometry questions visibility checks ask.
type LayoutProvider interface {
	// CumulativeOffset is the element's border-box origin relative to the
	// document, ignoring scrolling.
	CumulativeOffset(n *html.Node) layout.Position
	// ScrollOffset is (scrollLeft, scrollTop).
	ScrollOffset(n *html.Node) layout.Position
	ContentSize(n *html.Node) layout.Size
	Dimensions(n *html.Node) layout.Size
	ComputedStyle(n *html.Node, property string) string
}

// EventBus registers event listeners.
type EventBus interface {
	On(target events.Target, eventType string, fn events.Handler) events.Subscription
	Once(target events.Target, eventType string, fn events.Handler) events.Subscription
}

var (
	_ LayoutProvider = (*layout.Engine)(nil)
	_ EventBus       = (*events.Dispatcher)(nil)
)
