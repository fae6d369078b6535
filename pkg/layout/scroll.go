package layout

import (
	log "github.com/sirupsen/logrus"

	"lazy14/pkg/html"
)

// ScrollTo scrolls node's box to (x, y), clamped to its scroll range, and
// returns the offset actually applied. Boxes that do not clip their content
// cannot scroll and always report (0, 0).
func (le *Engine) ScrollTo(node *html.Node, x, y float64) Position {
	if le.boxes[node] == nil {
		return Position{}
	}
	pos := le.clampScroll(node, Position{X: x, Y: y})
	if pos == (Position{}) {
		delete(le.scroll, node)
	} else {
		le.scroll[node] = pos
	}
	log.Debugf("layout: scroll <%s> to %.0f,%.0f", node.TagName, pos.X, pos.Y)
	return pos
}

// ScrollOffset returns node's current scroll offset (scrollLeft, scrollTop).
func (le *Engine) ScrollOffset(node *html.Node) Position {
	return le.scroll[node]
}

// MaxScroll returns the largest offsets node can be scrolled to.
func (le *Engine) MaxScroll(node *html.Node) Position {
	box := le.boxes[node]
	if box == nil || !box.Overflow.ClipsContent() {
		return Position{}
	}
	pb := box.PaddingBox()
	return Position{
		X: max(0, box.ScrollWidth-pb.Width),
		Y: max(0, box.ScrollHeight-pb.Height),
	}
}

func (le *Engine) clampScroll(node *html.Node, pos Position) Position {
	limit := le.MaxScroll(node)
	return Position{
		X: min(max(pos.X, 0), limit.X),
		Y: min(max(pos.Y, 0), limit.Y),
	}
}
