package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

const userAgent = "lazy14/1.0 (compatible; Go)"

// Client fetches resources over HTTP/HTTPS, retrying transport errors and
// 5xx responses with exponential backoff.
type Client struct {
	HTTP *http.Client
	// NewBackOff returns the retry policy for one fetch.
	NewBackOff func() backoff.BackOff
}

// DefaultClient is the client fetchers use unless given another.
var DefaultClient = &Client{
	HTTP:       &http.Client{Timeout: 30 * time.Second},
	NewBackOff: defaultBackoff,
}

func defaultBackoff() backoff.BackOff {
	return backoff.WithMaxRetries(&backoff.ExponentialBackOff{
		InitialInterval:     200 * time.Millisecond,
		RandomizationFactor: 0.5,
		Multiplier:          2,
		MaxInterval:         2 * time.Second,
		MaxElapsedTime:      15 * time.Second,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}, 3)
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d fetching %s", e.StatusCode, e.URL)
}

// Fetch retrieves the content at rawURL. Returns the response body,
// content type, and any error.
func (c *Client) Fetch(ctx context.Context, rawURL string) (body []byte, contentType string, err error) {
	operation := func() error {
		body, contentType, err = c.fetchOnce(ctx, rawURL)
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode < 500 {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.WithContext(c.NewBackOff(), ctx)
	err = backoff.RetryNotify(operation, b, func(err error, d time.Duration) {
		log.Warnf("fetch failed, retrying in %v: %v", d, err)
	})
	if err != nil {
		return nil, "", err
	}
	return body, contentType, nil
}

func (c *Client) fetchOnce(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("reading response body: %w", err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// ResolveURL resolves a possibly-relative URI against a base URL.
// If ref is already absolute, it is returned as-is.
func ResolveURL(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

// IsNetworkURL returns true if the string looks like an HTTP or HTTPS URL.
func IsNetworkURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
