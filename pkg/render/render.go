package render

import (
	"image"
	"io"

	"github.com/fogleman/gg"
	log "github.com/sirupsen/logrus"

	"lazy14/pkg/css"
	"lazy14/pkg/html"
	"lazy14/pkg/images"
	"lazy14/pkg/layout"
)

const scrollbarWidth = 6.0

// ScrollSource reports the scroll offset of a scroll container.
type ScrollSource interface {
	ScrollOffset(node *html.Node) layout.Position
}

type Renderer struct {
	context *gg.Context
	images  *images.ImageCache
	fetcher images.ImageFetcher
}

func NewRenderer(width, height int) *Renderer {
	return &Renderer{context: gg.NewContext(width, height), images: images.NewImageCache()}
}

// SetImageCache shares decoded images with the layout engine.
func (r *Renderer) SetImageCache(cache *images.ImageCache) {
	r.images = cache
}

// SetImageFetcher sets the fetcher used for network image sources.
func (r *Renderer) SetImageFetcher(fetcher images.ImageFetcher) {
	r.fetcher = fetcher
}

// Render paints boxes in tree order. Scroll containers clip their content
// to the padding box and shift it by their scroll offset; scroll may be nil.
func (r *Renderer) Render(boxes []*layout.Box, scroll ScrollSource) {
	r.context.SetRGB(1, 1, 1)
	r.context.Clear()
	for _, box := range boxes {
		r.drawTree(box, scroll)
	}
}

func (r *Renderer) drawTree(box *layout.Box, scroll ScrollSource) {
	r.drawBox(box)
	if len(box.Children) == 0 {
		return
	}

	if !box.Overflow.ClipsContent() {
		for _, c := range box.Children {
			r.drawTree(c, scroll)
		}
		return
	}

	// Push/Pop restores the clip mask, so nested scroll containers clip to
	// the intersection of their scrollports.
	pb := box.PaddingBox()
	r.context.Push()
	r.context.DrawRectangle(pb.X, pb.Y, pb.Width, pb.Height)
	r.context.Clip()
	var off layout.Position
	if scroll != nil {
		off = scroll.ScrollOffset(box.Node)
	}
	r.context.Translate(-off.X, -off.Y)
	for _, c := range box.Children {
		r.drawTree(c, scroll)
	}
	r.context.Pop()

	if box.Overflow == css.OverflowScroll || box.Overflow == css.OverflowAuto {
		r.drawScrollbarIndicators(box, off)
	}
}

func (r *Renderer) drawBox(box *layout.Box) {
	if bgColor, ok := box.Style.Get("background-color"); ok {
		if color, ok := css.ParseColor(bgColor); ok {
			pb := box.PaddingBox()
			if pb.Width > 0 && pb.Height > 0 {
				r.setColor(color)
				r.context.DrawRectangle(pb.X, pb.Y, pb.Width, pb.Height)
				r.context.Fill()
			}
		}
	}

	r.drawBorder(box)

	if box.Node != nil && box.Node.TagName == "img" {
		r.drawImage(box)
	}
}

func (r *Renderer) setColor(c css.Color) {
	r.context.SetRGB255(int(c.R), int(c.G), int(c.B))
}

// borderColor returns border-color, falling back to color and then black.
func borderColor(box *layout.Box) css.Color {
	for _, prop := range []string{"border-color", "color"} {
		if s, ok := box.Style.Get(prop); ok {
			if c, ok := css.ParseColor(s); ok {
				return c
			}
		}
	}
	return css.Color{}
}

// drawBorder draws each side as a trapezoid so the corners are mitered.
func (r *Renderer) drawBorder(box *layout.Box) {
	b := box.Border
	if b.Top <= 0 && b.Right <= 0 && b.Bottom <= 0 && b.Left <= 0 {
		return
	}
	if s, _ := box.Style.Get("border-style"); s == "none" {
		return
	}

	outer := box.BorderBox()
	inner := box.PaddingBox()
	r.setColor(borderColor(box))

	side := func(width float64, pts ...float64) {
		if width <= 0 {
			return
		}
		r.context.MoveTo(pts[0], pts[1])
		for i := 2; i < len(pts); i += 2 {
			r.context.LineTo(pts[i], pts[i+1])
		}
		r.context.ClosePath()
		r.context.Fill()
	}
	side(b.Top, outer.X, outer.Y, outer.Right(), outer.Y, inner.Right(), inner.Y, inner.X, inner.Y)
	side(b.Right, outer.Right(), outer.Y, outer.Right(), outer.Bottom(), inner.Right(), inner.Bottom(), inner.Right(), inner.Y)
	side(b.Bottom, outer.X, outer.Bottom(), outer.Right(), outer.Bottom(), inner.Right(), inner.Bottom(), inner.X, inner.Bottom())
	side(b.Left, outer.X, outer.Y, outer.X, outer.Bottom(), inner.X, inner.Bottom(), inner.X, inner.Y)
}

// drawImage paints the current src of an <img>, scaled to its content box.
// An empty src (a lazy image with no placeholder) is a flat grey box and a
// source that fails to load is drawn crossed out.
func (r *Renderer) drawImage(box *layout.Box) {
	cb := box.ContentBox()
	if cb.Width <= 0 || cb.Height <= 0 {
		return
	}

	src, _ := box.Node.GetAttribute("src")
	if src == "" {
		r.context.SetRGB255(217, 217, 217)
		r.context.DrawRectangle(cb.X, cb.Y, cb.Width, cb.Height)
		r.context.Fill()
		return
	}

	img, err := r.images.Load(src, r.fetcher)
	if err != nil {
		log.WithError(err).Debug("render: image unavailable")
		r.context.SetRGB255(230, 230, 230)
		r.context.DrawRectangle(cb.X, cb.Y, cb.Width, cb.Height)
		r.context.Fill()

		r.context.SetRGB255(128, 128, 128)
		r.context.SetLineWidth(2)
		r.context.DrawLine(cb.X, cb.Y, cb.Right(), cb.Bottom())
		r.context.DrawLine(cb.Right(), cb.Y, cb.X, cb.Bottom())
		r.context.Stroke()
		return
	}

	r.context.Push()
	r.context.Translate(cb.X, cb.Y)
	bounds := img.Bounds()
	r.context.Scale(cb.Width/float64(bounds.Dx()), cb.Height/float64(bounds.Dy()))
	r.context.DrawImage(img, 0, 0)
	r.context.Pop()
}

// drawScrollbarIndicators draws thumbs showing the scroll position of a
// scroll container whose content overflows.
func (r *Renderer) drawScrollbarIndicators(box *layout.Box, off layout.Position) {
	pb := box.PaddingBox()
	r.context.SetRGB255(160, 160, 160)

	if box.ScrollHeight > pb.Height && pb.Height > 0 {
		h := pb.Height * pb.Height / box.ScrollHeight
		y := pb.Y + off.Y*pb.Height/box.ScrollHeight
		r.context.DrawRectangle(pb.Right()-scrollbarWidth, y, scrollbarWidth, h)
		r.context.Fill()
	}
	if box.ScrollWidth > pb.Width && pb.Width > 0 {
		w := pb.Width * pb.Width / box.ScrollWidth
		x := pb.X + off.X*pb.Width/box.ScrollWidth
		r.context.DrawRectangle(x, pb.Bottom()-scrollbarWidth, w, scrollbarWidth)
		r.context.Fill()
	}
}

// Image returns the rendered frame.
func (r *Renderer) Image() image.Image {
	return r.context.Image()
}

func (r *Renderer) SavePNG(filename string) error {
	return r.context.SavePNG(filename)
}

// EncodePNG writes the rendered frame to w.
func (r *Renderer) EncodePNG(w io.Writer) error {
	return r.context.EncodePNG(w)
}
