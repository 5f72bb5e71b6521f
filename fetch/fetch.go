// Package fetch retrieves a single page over HTTP.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"
)

// Sites are friendlier to a browser than to anything that admits to being a
// script.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:109.0) Gecko/20100101 Firefox/111.0"

// DefaultTimeout bounds the whole request, body included.
const DefaultTimeout = 2 * time.Second

// MaxBodySize caps how much of a response is read.
const MaxBodySize = 10 << 20

// ErrTransport wraps any failure to complete the request: bad URLs, DNS,
// refused connections and timeouts.
var ErrTransport = errors.New("failed to send request")

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error: %s", e.Status)
}

// Page is a fetched response body.
type Page struct {
	URL         string
	ContentType string
	Body        []byte
}

// Reader returns the body decoded to UTF-8 according to the response's
// Content-Type header and any meta charset in the markup.
func (p *Page) Reader() (io.Reader, error) {
	r, err := charset.NewReader(bytes.NewReader(p.Body), p.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to decode body: %w", err)
	}
	return r, nil
}

// Fetcher performs GET requests with a fixed User-Agent and timeout.
type Fetcher struct {
	// Client is used for requests; when nil, a client with Timeout is built.
	Client    *http.Client
	UserAgent string
	Timeout   time.Duration
}

// New creates a fetcher. Zero values fall back to the defaults.
func New(userAgent string, timeout time.Duration) *Fetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Fetcher{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: userAgent,
		Timeout:   timeout,
	}
}

// Fetch performs a single GET of url. It never retries.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: f.Timeout}
	}

	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	userAgent := f.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %w", ErrTransport, err)
	}

	return &Page{
		URL:         resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
