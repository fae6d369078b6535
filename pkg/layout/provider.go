package layout

import "lazy14/pkg/html"

// The methods below answer geometry questions about laid-out elements the
// way DOM scripts ask them. Elements without a box (display: none, or not
// laid out yet) report zero values.

// CumulativeOffset returns the border-box origin of node in document
// coordinates, unaffected by the scroll offsets of its ancestors.
func (le *Engine) CumulativeOffset(node *html.Node) Position {
	box := le.boxes[node]
	if box == nil {
		return Position{}
	}
	return Position{X: box.X, Y: box.Y}
}

// ContentSize returns the size of node's content box.
func (le *Engine) ContentSize(node *html.Node) Size {
	box := le.boxes[node]
	if box == nil {
		return Size{}
	}
	return Size{Width: box.Width, Height: box.Height}
}

// Dimensions returns the size of node's border box (offsetWidth/offsetHeight).
func (le *Engine) Dimensions(node *html.Node) Size {
	box := le.boxes[node]
	if box == nil {
		return Size{}
	}
	bb := box.BorderBox()
	return Size{Width: bb.Width, Height: bb.Height}
}

// ComputedStyle returns the cascaded value of property for node, or "".
func (le *Engine) ComputedStyle(node *html.Node, property string) string {
	style := le.styles[node]
	if style == nil {
		return ""
	}
	v, _ := style.Get(property)
	return v
}
