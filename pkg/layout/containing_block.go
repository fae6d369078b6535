package layout

import "lazy14/pkg/css"

// containingBlock returns the rectangle an out-of-flow box is positioned
// against: the padding box of the nearest positioned ancestor for absolute
// boxes, otherwise the viewport.
func (le *Engine) containingBlock(position css.PositionType, parent *Box) Rect {
	viewport := Rect{Width: le.viewport.width, Height: le.viewport.height}
	if position == css.PositionFixed {
		return viewport
	}
	if a := parent.nearestPositioned(); a != nil {
		return a.PaddingBox()
	}
	return viewport
}

// nearestPositioned returns b or its closest ancestor with position other
// than static. The walk stops at the document root.
func (b *Box) nearestPositioned() *Box {
	for a := b; a != nil && a.Node.IsElement(); a = a.Parent {
		if a.IsPositioned() {
			return a
		}
	}
	return nil
}

// IsPositioned returns true if the box has position != static
func (b *Box) IsPositioned() bool {
	return b.Position != css.PositionStatic
}
