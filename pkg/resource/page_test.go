package resource

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-cmp/cmp"

	"lazy14/pkg/events"
	"lazy14/pkg/lazyload"
	stdnet "lazy14/std/net"
)

const galleryPage = `
<style>
  #gallery { width: 200px; height: 200px; overflow: scroll }
  #gallery img { width: 20px; height: 20px }
  .spacer { height: 250px }
  .tail { height: 40px }
</style>
<div id="gallery">
  <img id="top" src="top.png">
  <div class="spacer"></div>
  <img id="low" src="low.png">
  <div class="tail"></div>
</div>`

func loadedByID(p *Page) map[string]bool {
	out := make(map[string]bool)
	for _, s := range p.Images() {
		out[s.ID] = s.Loaded
	}
	return out
}

func TestPage_ScriptLoader(t *testing.T) {
	src := galleryPage + `<script>var loader = new LazyLoader("gallery", {placeHolderImage: "ph.gif"});</script>`
	p, err := NewPage(src)
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	if len(p.Managers()) != 1 {
		t.Fatalf("managers = %d, want 1", len(p.Managers()))
	}

	want := map[string]bool{"img#top": false, "img#low": false}
	if diff := cmp.Diff(want, loadedByID(p)); diff != "" {
		t.Errorf("before load (-want +got):\n%s", diff)
	}

	p.Load()
	want["img#top"] = true
	if diff := cmp.Diff(want, loadedByID(p)); diff != "" {
		t.Errorf("after load (-want +got):\n%s", diff)
	}

	// low sits at 270..290; the scroll range is 0..130.
	off, err := p.ScrollTo("#gallery", 0, 500)
	if err != nil {
		t.Fatalf("ScrollTo: %v", err)
	}
	if off.Y != 130 {
		t.Errorf("scroll offset = %v", off.Y)
	}
	want["img#low"] = true
	if diff := cmp.Diff(want, loadedByID(p)); diff != "" {
		t.Errorf("after scroll (-want +got):\n%s", diff)
	}
}

func TestPage_OptionLoader(t *testing.T) {
	p, err := NewPage(galleryPage, WithLazyContainer("gallery", lazyload.WithThreshold(300)))
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	p.Load()
	p.Load()
	for _, s := range p.Images() {
		if !s.Loaded || s.Src != s.Original {
			t.Errorf("%s: loaded=%v src=%q original=%q", s.ID, s.Loaded, s.Src, s.Original)
		}
		if s.Container != "div#gallery" {
			t.Errorf("%s: container = %q", s.ID, s.Container)
		}
	}
}

func TestPage_ScriptErrorIsNotFatal(t *testing.T) {
	p, err := NewPage(galleryPage + `<script>throw new Error("boom")</script>`)
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	if len(p.Managers()) != 0 {
		t.Errorf("managers = %d, want 0", len(p.Managers()))
	}
}

func TestPage_WithoutScripts(t *testing.T) {
	src := galleryPage + `<script>new LazyLoader("gallery")</script>`
	p, err := NewPage(src, WithoutScripts())
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	if len(p.Managers()) != 0 {
		t.Errorf("scripts ran: %d managers", len(p.Managers()))
	}
}

func TestPage_ScrollUnknownContainer(t *testing.T) {
	p, err := NewPage(galleryPage)
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	if _, err := p.ScrollTo("#missing", 0, 10); err == nil {
		t.Error("expected error for missing container")
	}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{0, 128, 0, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestOpen_FileRelativeImages(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "pic.png"), 30, 10)
	page := `<div id="box" style="height: 100px; overflow: scroll"><img id="pic" src="pic.png"></div>`
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(page), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := Open(context.Background(), NewFetcher(dir), "index.html", WithLazyContainer("box", lazyload.WithThreshold(10)), WithViewport(100, 100))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	p.Load()

	pic := p.Document().ElementByID("pic")
	size := p.Layout().ContentSize(pic)
	if size.Width != 30 || size.Height != 10 {
		t.Errorf("natural size = %vx%v, want 30x10", size.Width, size.Height)
	}

	var buf bytes.Buffer
	if err := p.WritePNG(&buf); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	out, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if c := color.RGBAModel.Convert(out.At(15, 5)).(color.RGBA); c.G != 128 || c.R != 0 {
		t.Errorf("pixel inside image = %v", c)
	}
}

func TestOpen_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page.html":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(galleryPage))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p, err := Open(context.Background(), NewFetcher(srv.URL+"/"), "page.html", WithLazyContainer("#gallery"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := len(p.Images()); got != 2 {
		t.Errorf("tracked images = %d, want 2", got)
	}
}

func TestFetcher_Resolve(t *testing.T) {
	tests := []struct{ base, uri, want string }{
		{"http://example.com/dir/", "a.png", "http://example.com/dir/a.png"},
		{"http://example.com/dir/", "https://cdn.example.com/b.png", "https://cdn.example.com/b.png"},
		{"/srv/site", "img/c.png", filepath.Join("/srv/site", "img/c.png")},
		{"file:///srv/site", "c.png", filepath.Join("/srv/site", "c.png")},
		{"", "c.png", "c.png"},
		{"/srv/site", "/abs/d.png", "/abs/d.png"},
	}
	for _, tt := range tests {
		if got := NewFetcher(tt.base).Resolve(tt.uri); got != tt.want {
			t.Errorf("Resolve(%q) with base %q = %q, want %q", tt.uri, tt.base, got, tt.want)
		}
	}
}

func TestFetcher_RejectsNonImage(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "x.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewFetcher(dir).FetchImage("x.txt")
	if err == nil || !strings.Contains(err.Error(), "content type") {
		t.Errorf("err = %v, want content type error", err)
	}
}

func TestPage_ScrollContainer(t *testing.T) {
	p, err := NewPage(galleryPage + `<script>new LazyLoader("#gallery")</script>`)
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	gallery := p.Document().ElementByID("gallery")
	if got := p.ScrollContainer(""); got != gallery {
		t.Errorf("ScrollContainer(\"\") = %v, want the script loader's container", got)
	}
	if got := p.ScrollContainer("gallery"); got != gallery {
		t.Errorf("ScrollContainer by id = %v", got)
	}
	if got := p.ScrollContainer(".nothing"); got != nil {
		t.Errorf("ScrollContainer(.nothing) = %v, want nil", got)
	}
}

func TestFetcher_WithClientRetries(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(galleryPage))
	}))
	defer srv.Close()

	client := &stdnet.Client{
		HTTP:       srv.Client(),
		NewBackOff: func() backoff.BackOff { return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 1) },
	}
	f := NewFetcher(srv.URL + "/").WithClient(client)
	body, _, err := f.Fetch(context.Background(), "index.html")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.Contains(string(body), "gallery") || calls != 2 {
		t.Errorf("calls = %d, body %d bytes", calls, len(body))
	}
}

func TestPage_Bus(t *testing.T) {
	p, err := NewPage(galleryPage, WithLazyContainer("gallery"))
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	gallery := p.Document().ElementByID("gallery")
	if n := p.Bus().ListenerCount(events.Window, events.Load); n != 1 {
		t.Errorf("load listeners before Load = %d, want 1", n)
	}
	if n := p.Bus().ListenerCount(gallery, events.Scroll); n != 1 {
		t.Errorf("scroll listeners = %d, want 1", n)
	}

	// A scroll event delivered straight to the bus still updates the loader.
	p.Layout().ScrollTo(gallery, 0, 100)
	if n := p.Bus().Dispatch(gallery, events.Scroll); n != 1 {
		t.Errorf("scroll delivered to %d listener(s), want 1", n)
	}
	if got := loadedByID(p); !got["img#low"] {
		t.Errorf("low not loaded after scroll: %v", got)
	}

	p.Load()
	if n := p.Bus().ListenerCount(events.Window, events.Load); n != 0 {
		t.Errorf("load listeners after Load = %d, want 0", n)
	}
}
