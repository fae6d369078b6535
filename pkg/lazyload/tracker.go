package lazyload

import (
	log "github.com/sirupsen/logrus"

	"lazy14/pkg/html"
)

// Tracker follows one image. It starts hidden behind the placeholder and
// moves to loaded at most once.
type Tracker struct {
	image     *html.Node
	config    *Config
	container *html.Node
	layout    LayoutProvider

	originalSource string
	hasSource      bool
	loaded         bool
}

func newTracker(image *html.Node, config *Config, container *html.Node, layout LayoutProvider) *Tracker {
	t := &Tracker{
		image:     image,
		config:    config,
		container: container,
		layout:    layout,
	}
	t.hide()
	return t
}

// hide remembers the current src and swaps in the placeholder.
func (t *Tracker) hide() {
	t.originalSource, t.hasSource = t.image.GetAttribute("src")
	t.image.SetAttribute("src", t.config.PlaceholderImageURL)
}

// ShowIfVisible restores the original src if the image is visible. It
// reports whether this call loaded the image. An image that had no src when
// it was hidden is never loaded.
func (t *Tracker) ShowIfVisible() bool {
	if t.loaded || !t.hasSource || !t.IsVisible() {
		return false
	}
	t.image.SetAttribute("src", t.originalSource)
	t.loaded = true
	log.WithField("src", t.originalSource).Debug("lazyload: image revealed")
	return true
}

// IsVisible reports whether the image's top-left or bottom-right corner
// lies strictly inside the container's viewport grown by the threshold.
// Only the two corners are tested, so an image larger than the viewport
// that straddles it is not visible.
func (t *Tracker) IsVisible() bool {
	refSize := t.layout.ContentSize(t.container)
	refScroll := t.layout.ScrollOffset(t.container)
	refPos := t.layout.CumulativeOffset(t.container)
	imgPos := t.layout.CumulativeOffset(t.image)
	imgSize := t.layout.Dimensions(t.image)

	x := imgPos.X - refPos.X - refScroll.X
	y := imgPos.Y - refPos.Y - refScroll.Y
	threshold := float64(t.config.Threshold)

	inside := func(px, py float64) bool {
		return px > -threshold && px < refSize.Width+threshold &&
			py > -threshold && py < refSize.Height+threshold
	}
	return inside(x, y) || inside(x+imgSize.Width, y+imgSize.Height)
}

// Image returns the tracked element.
func (t *Tracker) Image() *html.Node {
	return t.image
}

// OriginalSource returns the src captured when the image was hidden; ok is
// false if the image had no src attribute.
func (t *Tracker) OriginalSource() (src string, ok bool) {
	return t.originalSource, t.hasSource
}

// Loaded reports whether the original source has been restored.
func (t *Tracker) Loaded() bool {
	return t.loaded
}
