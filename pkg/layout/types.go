package layout

import (
	"lazy14/pkg/css"
	"lazy14/pkg/html"
)

// Box is the laid-out geometry of one element. X and Y locate the border
// box in document coordinates, ignoring any scrolling of ancestors, which is
// what DOM offsetLeft/offsetTop accumulate to.
type Box struct {
	Node      *html.Node
	Style     *css.Style
	X         float64
	Y         float64
	Width     float64 // content width
	Height    float64 // content height
	Margin    css.BoxEdge
	Padding   css.BoxEdge
	Border    css.BoxEdge
	Children  []*Box
	Parent    *Box
	Position  css.PositionType
	Overflow  css.OverflowType
	ImagePath string // src of <img> at layout time

	// Scroll extent of a clipping box's padding box; equal to the client
	// size when nothing overflows.
	ScrollWidth  float64
	ScrollHeight float64
}

// Position represents a 2D coordinate
type Position struct {
	X float64
	Y float64
}

// Size represents dimensions (width and height)
type Size struct {
	Width  float64
	Height float64
}

// Rect represents a rectangular region
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// BorderBox returns the border-box rectangle.
func (b *Box) BorderBox() Rect {
	return Rect{
		X:      b.X,
		Y:      b.Y,
		Width:  b.Width + b.Padding.Horizontal() + b.Border.Horizontal(),
		Height: b.Height + b.Padding.Vertical() + b.Border.Vertical(),
	}
}

// PaddingBox returns the padding-box rectangle (the scrollport of a
// scroll container).
func (b *Box) PaddingBox() Rect {
	return Rect{
		X:      b.X + b.Border.Left,
		Y:      b.Y + b.Border.Top,
		Width:  b.Width + b.Padding.Horizontal(),
		Height: b.Height + b.Padding.Vertical(),
	}
}

// ContentBox returns the content-box rectangle.
func (b *Box) ContentBox() Rect {
	return Rect{
		X:      b.X + b.Border.Left + b.Padding.Left,
		Y:      b.Y + b.Border.Top + b.Padding.Top,
		Width:  b.Width,
		Height: b.Height,
	}
}

// MarginBoxSize returns the outer size including margins.
func (b *Box) MarginBoxSize() Size {
	bb := b.BorderBox()
	return Size{
		Width:  bb.Width + b.Margin.Horizontal(),
		Height: bb.Height + b.Margin.Vertical(),
	}
}

// translate moves b and its subtree.
func (b *Box) translate(dx, dy float64) {
	b.X += dx
	b.Y += dy
	for _, c := range b.Children {
		c.translate(dx, dy)
	}
}

// Right and Bottom of a rect.
func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Intersect returns the overlap of r and o; empty rects have zero size.
func (r Rect) Intersect(o Rect) Rect {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.Right(), o.Right()), min(r.Bottom(), o.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{X: x0, Y: y0}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}
