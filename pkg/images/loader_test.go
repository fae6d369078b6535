package images

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	red := color.RGBA{255, 0, 0, 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, red)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func pngDataURI(t *testing.T, w, h int) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(encodePNG(t, w, h))
}

func TestIsDataURI(t *testing.T) {
	if !IsDataURI("data:image/png;base64,abc") {
		t.Error("expected true for data URI")
	}
	if IsDataURI("/path/to/file.png") || IsDataURI("") {
		t.Error("expected false for non data URIs")
	}
}

func TestLoadImageFromDataURI_Invalid(t *testing.T) {
	tests := []string{
		"not-a-data-uri",
		"data:image/png;base64", // no comma
		"data:image/png;base64,!!!invalid-base64!!!",
		"data:image/png;base64,aGVsbG8=", // valid base64 but not an image
	}
	for _, uri := range tests {
		if _, err := LoadImageFromDataURI(uri); err == nil {
			t.Errorf("expected error for %q", uri)
		}
	}
}

func TestCacheLoadDataURI(t *testing.T) {
	c := NewImageCache()
	uri := pngDataURI(t, 3, 2)
	img, err := c.Load(uri, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Errorf("expected 3x2 image, got %dx%d", b.Dx(), b.Dy())
	}
	img2, err := c.Load(uri, nil)
	if err != nil {
		t.Fatalf("unexpected error on cached load: %v", err)
	}
	if img != img2 {
		t.Error("expected cached image to be the same value")
	}
}

func TestCacheLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pic.png")
	if err := os.WriteFile(path, encodePNG(t, 4, 5), 0o644); err != nil {
		t.Fatal(err)
	}
	w, h, err := NewImageCache().Dimensions(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w != 4 || h != 5 {
		t.Errorf("expected 4x5, got %dx%d", w, h)
	}
}

func TestCacheLoadNetworkUsesFetcher(t *testing.T) {
	body := encodePNG(t, 6, 1)
	calls := 0
	fetcher := func(uri string) ([]byte, error) {
		calls++
		if uri != "https://example.com/a.png" {
			t.Errorf("unexpected uri %q", uri)
		}
		return body, nil
	}
	c := NewImageCache()
	for i := 0; i < 2; i++ {
		if w, _, err := c.Dimensions("https://example.com/a.png", fetcher); err != nil || w != 6 {
			t.Fatalf("Dimensions() = %d, %v", w, err)
		}
	}
	if calls != 1 {
		t.Errorf("fetcher called %d times, want 1", calls)
	}
	if _, err := c.Load("https://example.com/b.png", nil); err == nil {
		t.Error("expected error without a fetcher")
	}
}

func TestCacheLoadEmptySource(t *testing.T) {
	if _, err := NewImageCache().Load("", nil); !errors.Is(err, ErrNoSource) {
		t.Errorf("expected ErrNoSource, got %v", err)
	}
}
