package resource

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	stdnet "lazy14/std/net"
)

// Fetcher retrieves resources by URI.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (body []byte, contentType string, err error)
}

// DefaultFetcher fetches resources over HTTP/HTTPS or from the local
// filesystem, resolving relative URIs against a base.
type DefaultFetcher struct {
	base   string
	client *stdnet.Client
}

// NewFetcher creates a DefaultFetcher with the given base, which may be a
// URL, a file:// URL or a directory. Relative URIs passed to Fetch will be
// resolved against it.
func NewFetcher(base string) *DefaultFetcher {
	return &DefaultFetcher{base: base, client: stdnet.DefaultClient}
}

// WithClient returns a copy of f that uses client for network requests.
func (f *DefaultFetcher) WithClient(client *stdnet.Client) *DefaultFetcher {
	c := *f
	c.client = client
	return &c
}

// Resolve returns the absolute form of uri.
func (f *DefaultFetcher) Resolve(uri string) string {
	switch {
	case stdnet.IsNetworkURL(uri), strings.HasPrefix(uri, "file://"), strings.HasPrefix(uri, "data:"):
		return uri
	case stdnet.IsNetworkURL(f.base):
		return stdnet.ResolveURL(f.base, uri)
	case f.base != "" && !filepath.IsAbs(uri):
		return filepath.Join(strings.TrimPrefix(f.base, "file://"), uri)
	}
	return uri
}

// Fetch retrieves the resource at the given URI.
// Relative URIs are resolved against the fetcher's base.
func (f *DefaultFetcher) Fetch(ctx context.Context, uri string) ([]byte, string, error) {
	resolved := f.Resolve(uri)
	if stdnet.IsNetworkURL(resolved) {
		return f.client.Fetch(ctx, resolved)
	}
	if strings.HasPrefix(resolved, "data:") {
		return nil, "", fmt.Errorf("data URIs are decoded in place, not fetched")
	}

	path := strings.TrimPrefix(resolved, "file://")
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", path, err)
	}
	return body, mime.TypeByExtension(filepath.Ext(path)), nil
}

// FetchImage fetches an image URI and returns its raw bytes. It has the
// shape of images.ImageFetcher.
func (f *DefaultFetcher) FetchImage(uri string) ([]byte, error) {
	body, contentType, err := f.Fetch(context.Background(), uri)
	if err != nil {
		return nil, err
	}
	if contentType != "" && !strings.HasPrefix(contentType, "image/") && !strings.HasPrefix(contentType, "application/octet-stream") {
		return nil, fmt.Errorf("unexpected content type for image: %s", contentType)
	}
	return body, nil
}
