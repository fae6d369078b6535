package resource

import (
	"context"
	"fmt"
	"image"
	"io"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"lazy14/pkg/events"
	"lazy14/pkg/html"
	"lazy14/pkg/images"
	"lazy14/pkg/js"
	"lazy14/pkg/layout"
	"lazy14/pkg/lazyload"
	"lazy14/pkg/render"
	stdnet "lazy14/std/net"
)

// LazyContainer asks a Page to lazy load the images of a container that
// scripts on the page do not set up themselves.
type LazyContainer struct {
	// Ref is a CSS selector or element id.
	Ref     string
	Options []lazyload.Option
}

type pageOptions struct {
	width, height int
	fetcher       Fetcher
	containers    []LazyContainer
	scripts       bool
}

// PageOption configures NewPage.
type PageOption func(*pageOptions)

// WithViewport sets the viewport size in pixels. The default is 800x600.
func WithViewport(width, height int) PageOption {
	return func(o *pageOptions) {
		o.width, o.height = width, height
	}
}

// WithFetcher sets the fetcher used for images.
func WithFetcher(f Fetcher) PageOption {
	return func(o *pageOptions) {
		o.fetcher = f
	}
}

// WithLazyContainer adds a lazy loader for the container named by ref.
func WithLazyContainer(ref string, opts ...lazyload.Option) PageOption {
	return func(o *pageOptions) {
		o.containers = append(o.containers, LazyContainer{Ref: ref, Options: opts})
	}
}

// WithoutScripts skips the page's <script> elements.
func WithoutScripts() PageOption {
	return func(o *pageOptions) {
		o.scripts = false
	}
}

// Page is a loaded document with its layout, event bus, script engine and
// lazy loaders. It is not safe for concurrent use.
type Page struct {
	doc      *html.Document
	layout   *layout.Engine
	bus      *events.Dispatcher
	js       *js.Engine
	images   *images.ImageCache
	fetch    images.ImageFetcher
	managers []*lazyload.Manager
	width    int
	height   int
	loaded   bool
}

// Open fetches uri with f and builds a Page whose images are also fetched
// with f.
func Open(ctx context.Context, f Fetcher, uri string, opts ...PageOption) (*Page, error) {
	body, _, err := f.Fetch(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("fetching document: %w", err)
	}
	return NewPage(string(body), append([]PageOption{WithFetcher(f)}, opts...)...)
}

// OpenTarget opens a URL, or a file path whose relative image sources
// resolve against its directory.
func OpenTarget(ctx context.Context, target string, opts ...PageOption) (*Page, error) {
	if stdnet.IsNetworkURL(target) {
		return Open(ctx, NewFetcher(target), target, opts...)
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", target, err)
	}
	return Open(ctx, NewFetcher(filepath.Dir(abs)), filepath.Base(abs), opts...)
}

// NewPage parses src, lays it out, runs its scripts and creates the lazy
// loaders asked for by opts. Script errors are logged, not returned. The
// window load event is not fired until Load.
func NewPage(src string, opts ...PageOption) (*Page, error) {
	o := pageOptions{width: 800, height: 600, scripts: true}
	for _, opt := range opts {
		opt(&o)
	}

	doc, err := html.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	p := &Page{
		doc:    doc,
		layout: layout.NewLayoutEngine(float64(o.width), float64(o.height)),
		bus:    events.NewDispatcher(),
		images: images.NewImageCache(),
		width:  o.width,
		height: o.height,
	}
	if o.fetcher != nil {
		fetcher := o.fetcher
		p.fetch = func(uri string) ([]byte, error) {
			body, _, err := fetcher.Fetch(context.Background(), uri)
			return body, err
		}
	}
	p.layout.SetImageCache(p.images)
	p.layout.SetImageFetcher(p.fetch)
	p.layout.Layout(doc)

	p.js = js.New(doc, p.layout, p.bus)
	if o.scripts {
		if err := p.js.Execute(); err != nil {
			log.WithError(err).Warn("page: script failed")
		}
	}

	p.Relayout()
	for _, c := range o.containers {
		m := lazyload.NewFromSelector(doc, c.Ref, p.layout, p.bus, c.Options...)
		if m.Inert() {
			log.Warnf("page: lazy container %q not found", c.Ref)
		}
		p.managers = append(p.managers, m)
	}

	log.WithFields(log.Fields{
		"scripts":  len(doc.Scripts),
		"managers": len(p.Managers()),
	}).Debug("page: ready")
	return p, nil
}

// Document returns the page's DOM.
func (p *Page) Document() *html.Document { return p.doc }

// Layout returns the page's layout engine.
func (p *Page) Layout() *layout.Engine { return p.layout }

// Bus returns the page's event dispatcher.
func (p *Page) Bus() *events.Dispatcher { return p.bus }

// Managers returns the lazy loaders created by scripts followed by those
// created from options.
func (p *Page) Managers() []*lazyload.Manager {
	out := append([]*lazyload.Manager(nil), p.js.Managers()...)
	return append(out, p.managers...)
}

// Relayout lays the document out again, for example after lazy loaders
// swapped image sources. Scroll offsets are kept.
func (p *Page) Relayout() {
	p.layout.Layout(p.doc)
}

// Load fires the window load event once and lays out the images it
// revealed. Later calls do nothing.
func (p *Page) Load() {
	if p.loaded {
		return
	}
	p.loaded = true
	p.Relayout()
	n := p.bus.Dispatch(events.Window, events.Load)
	p.Relayout()
	log.Debugf("page: load delivered to %d listener(s)", n)
}

// ScrollTo scrolls the container named by ref (a CSS selector or id) and
// fires a scroll event on it when the offset changed. It returns the
// clamped offset.
func (p *Page) ScrollTo(ref string, x, y float64) (layout.Position, error) {
	node := lazyload.FindContainer(p.doc, ref)
	if node == nil {
		return layout.Position{}, fmt.Errorf("no element matches %q", ref)
	}
	return p.ScrollElement(node, x, y), nil
}

// ScrollElement is ScrollTo for an element already in hand.
func (p *Page) ScrollElement(node *html.Node, x, y float64) layout.Position {
	p.Relayout()
	before := p.layout.ScrollOffset(node)
	after := p.layout.ScrollTo(node, x, y)
	if after != before {
		p.bus.Dispatch(node, events.Scroll)
		p.Relayout()
	}
	return after
}

// ScrollContainer returns the element named by ref or, when ref is empty,
// the container of the first lazy loader on the page. It returns nil when
// there is none.
func (p *Page) ScrollContainer(ref string) *html.Node {
	if ref != "" {
		return lazyload.FindContainer(p.doc, ref)
	}
	for _, m := range p.Managers() {
		if !m.Inert() {
			return m.Container()
		}
	}
	return nil
}

// ImageState describes one tracked image.
type ImageState struct {
	Container string
	ID        string
	Src       string
	Original  string
	Loaded    bool
	Visible   bool
}

// Images reports the state of every tracked image, grouped by manager.
func (p *Page) Images() []ImageState {
	p.Relayout()
	var out []ImageState
	for _, m := range p.Managers() {
		if m.Inert() {
			continue
		}
		container := nodeLabel(m.Container())
		for _, t := range m.Trackers() {
			src, _ := t.Image().GetAttribute("src")
			orig, _ := t.OriginalSource()
			out = append(out, ImageState{
				Container: container,
				ID:        nodeLabel(t.Image()),
				Src:       src,
				Original:  orig,
				Loaded:    t.Loaded(),
				Visible:   t.IsVisible(),
			})
		}
	}
	return out
}

// Render lays the page out and paints it.
func (p *Page) Render() image.Image {
	return p.renderer().Image()
}

// WritePNG renders the page as PNG to w.
func (p *Page) WritePNG(w io.Writer) error {
	return p.renderer().EncodePNG(w)
}

func (p *Page) renderer() *render.Renderer {
	p.Relayout()
	r := render.NewRenderer(p.width, p.height)
	r.SetImageCache(p.images)
	r.SetImageFetcher(p.fetch)
	r.Render(p.layout.Boxes(), p.layout)
	return r
}

func nodeLabel(n *html.Node) string {
	if id, ok := n.GetAttribute("id"); ok && id != "" {
		return n.TagName + "#" + id
	}
	if cls, ok := n.GetAttribute("class"); ok && cls != "" {
		return n.TagName + "." + cls
	}
	return n.TagName
}
