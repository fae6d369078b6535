package images

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"strings"
	"sync"
)

// ImageFetcher retrieves the raw bytes of a network image.
type ImageFetcher func(uri string) ([]byte, error)

// ErrNoSource is returned for an empty image source, such as the default
// lazy-loading placeholder.
var ErrNoSource = errors.New("images: empty source")

// ImageCache caches decoded images by source string.
type ImageCache struct {
	cache map[string]image.Image
	mu    sync.RWMutex
}

func NewImageCache() *ImageCache {
	return &ImageCache{cache: make(map[string]image.Image)}
}

// IsDataURI reports whether src is a data: URI.
func IsDataURI(src string) bool {
	return strings.HasPrefix(src, "data:")
}

func isNetworkURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// Load decodes the image named by src. Data URIs are decoded in place; any
// other source goes through fetcher, or is read as a file path when fetcher
// is nil. Successful decodes are cached.
func (c *ImageCache) Load(src string, fetcher ImageFetcher) (image.Image, error) {
	if src == "" {
		return nil, ErrNoSource
	}

	c.mu.RLock()
	img, ok := c.cache[src]
	c.mu.RUnlock()
	if ok {
		return img, nil
	}

	var err error
	switch {
	case IsDataURI(src):
		img, err = LoadImageFromDataURI(src)
	case fetcher != nil:
		var body []byte
		if body, err = fetcher(src); err == nil {
			img, _, err = image.Decode(bytes.NewReader(body))
		}
	case isNetworkURL(src):
		return nil, fmt.Errorf("images: no fetcher for %s", src)
	default:
		img, err = decodeFile(strings.TrimPrefix(src, "file://"))
	}
	if err != nil {
		return nil, fmt.Errorf("images: loading %s: %w", truncate(src), err)
	}

	c.mu.Lock()
	c.cache[src] = img
	c.mu.Unlock()
	return img, nil
}

// Dimensions returns the natural width and height of the image at src.
func (c *ImageCache) Dimensions(src string, fetcher ImageFetcher) (width, height int, err error) {
	img, err := c.Load(src, fetcher)
	if err != nil {
		return 0, 0, err
	}
	bounds := img.Bounds()
	return bounds.Dx(), bounds.Dy(), nil
}

func decodeFile(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	return img, err
}

// LoadImageFromDataURI decodes "data:[<mediatype>][;base64],<data>".
func LoadImageFromDataURI(uri string) (image.Image, error) {
	if !IsDataURI(uri) {
		return nil, fmt.Errorf("not a data URI")
	}
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return nil, fmt.Errorf("malformed data URI: missing ','")
	}
	meta, payload := uri[len("data:"):comma], uri[comma+1:]

	var raw []byte
	var err error
	if strings.HasSuffix(meta, ";base64") {
		raw, err = base64.StdEncoding.DecodeString(payload)
	} else {
		var s string
		s, err = url.PathUnescape(payload)
		raw = []byte(s)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding data URI payload: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return img, nil
}

func truncate(src string) string {
	if len(src) > 64 {
		return src[:64] + "..."
	}
	return src
}
