package layout

import (
	log "github.com/sirupsen/logrus"

	"lazy14/pkg/css"
	"lazy14/pkg/html"
	"lazy14/pkg/images"
)

// Engine lays out a document into boxes and keeps the scroll offsets of
// its scroll containers between layouts.
type Engine struct {
	viewport struct {
		width  float64
		height float64
	}
	imageFetcher images.ImageFetcher
	imageCache   *images.ImageCache

	styles map[*html.Node]*css.Style
	boxes  map[*html.Node]*Box
	roots  []*Box
	scroll map[*html.Node]Position
}

func NewLayoutEngine(viewportWidth, viewportHeight float64) *Engine {
	le := &Engine{
		imageCache: images.NewImageCache(),
		boxes:      make(map[*html.Node]*Box),
		scroll:     make(map[*html.Node]Position),
	}
	le.viewport.width = viewportWidth
	le.viewport.height = viewportHeight
	return le
}

// SetImageFetcher sets the image fetcher used to size network images.
func (le *Engine) SetImageFetcher(fetcher images.ImageFetcher) {
	le.imageFetcher = fetcher
}

// SetImageCache shares a decoded-image cache with other components.
func (le *Engine) SetImageCache(cache *images.ImageCache) {
	le.imageCache = cache
}

// Viewport returns the viewport size.
func (le *Engine) Viewport() Size {
	return Size{Width: le.viewport.width, Height: le.viewport.height}
}

// Layout computes styles and boxes for doc. Scroll offsets from a previous
// layout are kept and re-clamped to the new scroll extents.
func (le *Engine) Layout(doc *html.Document) []*Box {
	le.styles = css.ApplyStylesToDocument(doc)
	le.boxes = make(map[*html.Node]*Box)

	root := &Box{Node: doc.Root, Style: css.NewStyle(), Width: le.viewport.width}
	_, absolutes := le.layoutChildren(root, doc.Root)
	le.layoutAbsolutes(absolutes, root)
	le.roots = root.Children
	for _, b := range le.roots {
		b.Parent = nil
	}

	for node, pos := range le.scroll {
		if _, ok := le.boxes[node]; !ok {
			delete(le.scroll, node)
			continue
		}
		le.scroll[node] = le.clampScroll(node, pos)
	}
	log.Debugf("layout: %d boxes in %.0fx%.0f viewport", len(le.boxes), le.viewport.width, le.viewport.height)
	return le.roots
}

// Boxes returns the top-level boxes of the last layout.
func (le *Engine) Boxes() []*Box {
	return le.roots
}

// BoxFor returns the box generated for node by the last layout, or nil.
func (le *Engine) BoxFor(node *html.Node) *Box {
	return le.boxes[node]
}

func (le *Engine) styleFor(node *html.Node) *css.Style {
	if s := le.styles[node]; s != nil {
		return s
	}
	return css.NewStyle()
}

// layoutBlock lays out a block-level element whose margin box starts at
// (x, y) with availableWidth of containing block content width.
func (le *Engine) layoutBlock(node *html.Node, x, y, availableWidth float64, parent *Box) *Box {
	box := le.newBox(node, parent)

	if w, ok := box.Style.GetLength("width"); ok {
		box.Width = w
	} else {
		box.Width = max(0, availableWidth-box.Margin.Horizontal()-box.Border.Horizontal()-box.Padding.Horizontal())
	}
	box.X = x + box.Margin.Left
	box.Y = y + box.Margin.Top

	contentHeight, absolutes := le.layoutChildren(box, node)
	if h, ok := box.Style.GetLength("height"); ok {
		box.Height = h
	} else {
		box.Height = contentHeight
	}
	le.layoutAbsolutes(absolutes, box)
	le.finishBox(box)
	return box
}

func (le *Engine) newBox(node *html.Node, parent *Box) *Box {
	style := le.styleFor(node)
	box := &Box{
		Node:     node,
		Style:    style,
		Margin:   style.GetMargin(),
		Padding:  style.GetPadding(),
		Border:   style.GetBorderWidth(),
		Parent:   parent,
		Position: style.GetPosition(),
		Overflow: style.GetOverflow(),
	}
	le.boxes[node] = box
	return box
}

// finishBox applies relative offsets and records the scroll extent.
func (le *Engine) finishBox(box *Box) {
	if box.Position == css.PositionRelative {
		off := box.Style.GetPositionOffset()
		dx, dy := off.Left, off.Top
		if !off.HasLeft && off.HasRight {
			dx = -off.Right
		}
		if !off.HasTop && off.HasBottom {
			dy = -off.Bottom
		}
		box.translate(dx, dy)
	}
	measureScroll(box)
}

// measureScroll sets ScrollWidth/ScrollHeight. Only clipping boxes can
// exceed their padding box.
func measureScroll(box *Box) {
	pb := box.PaddingBox()
	box.ScrollWidth, box.ScrollHeight = pb.Width, pb.Height
	if !box.Overflow.ClipsContent() {
		return
	}
	right, bottom := pb.Right(), pb.Bottom()
	for _, c := range box.Children {
		extentOf(c, &right, &bottom)
	}
	box.ScrollWidth = max(pb.Width, right+box.Padding.Right-pb.X)
	box.ScrollHeight = max(pb.Height, bottom+box.Padding.Bottom-pb.Y)
}

// extentOf grows right/bottom to cover b's margin box and, unless b clips,
// its descendants.
func extentOf(b *Box, right, bottom *float64) {
	bb := b.BorderBox()
	*right = max(*right, bb.Right()+b.Margin.Right)
	*bottom = max(*bottom, bb.Bottom()+b.Margin.Bottom)
	if b.Overflow.ClipsContent() {
		return
	}
	for _, c := range b.Children {
		extentOf(c, right, bottom)
	}
}

// layoutChildren flows node's children inside box's content area. It
// returns the resulting content height and the out-of-flow children, which
// are laid out once box has its final size.
func (le *Engine) layoutChildren(box *Box, node *html.Node) (float64, []*html.Node) {
	content := box.ContentBox()
	line := newLineState(content.X, content.Y, box.Width)
	var absolutes []*html.Node

	var flow func(n *html.Node, parent *Box)
	flow = func(n *html.Node, parent *Box) {
		for _, child := range n.Children {
			if child.Type == html.TextNode {
				line.place(measureText(child.Text, le.styleFor(n)))
				continue
			}
			style := le.styleFor(child)
			display := style.GetDisplay()
			if display == css.DisplayNone {
				continue
			}
			if pos := style.GetPosition(); pos == css.PositionAbsolute || pos == css.PositionFixed {
				absolutes = append(absolutes, child)
				continue
			}

			switch {
			case child.TagName == "img":
				le.layoutReplaced(child, parent, line)
			case display == css.DisplayInlineBlock:
				le.layoutInlineBlock(child, parent, line)
			case display == css.DisplayInline:
				// Inline content joins the current line; the inline box
				// spans from where it started to where the line ended up.
				inline := le.newBox(child, parent)
				parent.Children = append(parent.Children, inline)
				inline.X, inline.Y = line.x, line.y
				flow(child, inline)
				inline.Width = max(0, line.x-inline.X)
				inline.Height = line.height
			default:
				y := line.breakLine()
				cb := le.layoutBlock(child, content.X, y, box.Width, parent)
				parent.Children = append(parent.Children, cb)
				line.reset(y + cb.MarginBoxSize().Height)
			}
		}
	}
	flow(node, box)
	return line.breakLine() - content.Y, absolutes
}

func (le *Engine) layoutAbsolutes(nodes []*html.Node, box *Box) {
	for _, n := range nodes {
		parent := le.boxes[n.Parent]
		if parent == nil {
			parent = box
		}
		le.layoutAbsolute(n, parent)
	}
}

// layoutReplaced places an <img> as an inline atom.
func (le *Engine) layoutReplaced(node *html.Node, parent *Box, line *lineState) {
	box := le.newBox(node, parent)
	box.ImagePath, _ = node.GetAttribute("src")
	box.Width, box.Height = le.imageSize(node, box.Style)

	outer := box.MarginBoxSize()
	x, y := line.place(outer.Width, outer.Height)
	box.X = x + box.Margin.Left
	box.Y = y + box.Margin.Top
	le.finishBox(box)
	parent.Children = append(parent.Children, box)
}

func (le *Engine) layoutInlineBlock(node *html.Node, parent *Box, line *lineState) {
	box := le.layoutBlock(node, 0, 0, line.width, parent)
	if _, ok := box.Style.GetLength("width"); !ok {
		// Shrink to the widest child.
		var right float64
		origin := box.ContentBox().X
		for _, c := range box.Children {
			right = max(right, c.BorderBox().Right()+c.Margin.Right-origin)
		}
		box.Width = right
		measureScroll(box)
	}
	outer := box.MarginBoxSize()
	x, y := line.place(outer.Width, outer.Height)
	box.translate(x, y)
	parent.Children = append(parent.Children, box)
}

// layoutAbsolute lays out an absolute or fixed element against its
// containing block.
func (le *Engine) layoutAbsolute(node *html.Node, parent *Box) {
	cb := le.containingBlock(le.styleFor(node).GetPosition(), parent)

	var box *Box
	if node.TagName == "img" {
		box = le.newBox(node, parent)
		box.ImagePath, _ = node.GetAttribute("src")
		box.Width, box.Height = le.imageSize(node, box.Style)
	} else {
		box = le.layoutBlock(node, 0, 0, cb.Width, parent)
	}

	off := box.Style.GetPositionOffset()
	bb := box.BorderBox()
	x, y := cb.X+off.Left, cb.Y+off.Top
	if !off.HasLeft && off.HasRight {
		x = cb.Right() - off.Right - bb.Width
	}
	if !off.HasTop && off.HasBottom {
		y = cb.Bottom() - off.Bottom - bb.Height
	}
	box.translate(x+box.Margin.Left-box.X, y+box.Margin.Top-box.Y)
	measureScroll(box)
	parent.Children = append(parent.Children, box)
}

// imageSize resolves the content size of an <img>: CSS width/height, then
// the width/height attributes, then the natural size of the current source,
// keeping the aspect ratio when only one dimension is given.
func (le *Engine) imageSize(node *html.Node, style *css.Style) (float64, float64) {
	dim := func(prop string) (float64, bool) {
		if v, ok := style.GetLength(prop); ok {
			return v, true
		}
		if attr, ok := node.GetAttribute(prop); ok {
			return css.ParseLength(attr)
		}
		return 0, false
	}
	w, hasW := dim("width")
	h, hasH := dim("height")
	if hasW && hasH {
		return w, h
	}

	src, _ := node.GetAttribute("src")
	nw, nh, err := le.imageCache.Dimensions(src, le.imageFetcher)
	if err != nil || nw == 0 || nh == 0 {
		return w, h
	}
	switch {
	case hasW:
		return w, w * float64(nh) / float64(nw)
	case hasH:
		return h * float64(nw) / float64(nh), h
	}
	return float64(nw), float64(nh)
}
