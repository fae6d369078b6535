// Package lazyload defers loading of the images inside a scroll container
// until they come within a threshold of the container's visible area.
//
// A Manager swaps every <img> under its container to a placeholder source
// when it is created, and restores the real source of each image the first
// time an update finds one of the image's corners inside the container's
// viewport grown by the threshold. When the container's computed overflow
// is "scroll", updates run on the container's scroll events and once on the
// window load event.
//
// Geometry comes from a LayoutProvider (pkg/layout.Engine in this module)
// and events from an EventBus (pkg/events.Dispatcher), so both can be faked
// in tests.
package lazyload
