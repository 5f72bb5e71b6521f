// Package postline fetches a single post, comment or article and reduces it
// to one tab-delimited line: when it was published, where it came from, and
// what it says.
package postline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pevans/postline/config"
	"github.com/pevans/postline/extract"
	"github.com/pevans/postline/fetch"
	"github.com/pevans/postline/format"
	"github.com/pevans/postline/logger"
	"github.com/pevans/postline/site"
)

// ErrUsage is returned when the command line does not name exactly one URL.
var ErrUsage = errors.New("no URL supplied")

// ParseError wraps anything that went wrong after the page was fetched:
// decoding, parsing, or a node the extractor needed but could not find.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse the webpage: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Result is a record together with how it was obtained.
type Result struct {
	URL     string
	Profile site.Profile
	Record  *extract.Record
}

// Line renders the result for output.
func (r *Result) Line(opts format.Options) string {
	return format.Line(r.Record, r.URL, r.Profile, opts)
}

// Grabber runs the dispatch, fetch and extract steps for one URL.
type Grabber struct {
	Fetcher *fetch.Fetcher
	Feeds   bool
	Logger  *logger.Logger
}

// NewGrabber creates a grabber from resolved settings.
func NewGrabber(settings config.Settings, log *logger.Logger) *Grabber {
	if log == nil {
		log = logger.Discard()
	}

	return &Grabber{
		Fetcher: fetch.New(settings.UserAgent, settings.Timeout),
		Feeds:   settings.Feeds,
		Logger:  log,
	}
}

// Grab fetches rawURL once and extracts its record. Errors are either
// fetch.ErrTransport, *fetch.StatusError or *ParseError; none are retried.
func (g *Grabber) Grab(ctx context.Context, rawURL string) (*Result, error) {
	log := g.Logger
	if log == nil {
		log = logger.Discard()
	}
	log = log.With("run", uuid.New().String())

	profile := site.Resolve(rawURL, site.WithFeeds(g.Feeds))
	log.Debug("resolved site",
		"url", rawURL,
		"site", profile.Site.String(),
		"request_url", profile.RequestURL,
		"type", string(profile.ContentType),
	)

	start := time.Now()
	page, err := g.Fetcher.Fetch(ctx, profile.RequestURL)
	if err != nil {
		log.Debug("fetch failed", "request_url", profile.RequestURL, "error", err)
		return nil, err
	}
	log.Debug("fetched page",
		"request_url", page.URL,
		"bytes", len(page.Body),
		"content_type", page.ContentType,
		"duration", time.Since(start),
	)

	r, err := page.Reader()
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	doc, err := extract.NewDocument(page.Body, r)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	rec, err := extract.For(profile.Site).Extract(doc, profile.ContentType)
	if err != nil {
		log.Debug("extraction failed", "site", profile.Site.String(), "error", err)
		return nil, &ParseError{Err: err}
	}

	return &Result{URL: rawURL, Profile: profile, Record: rec}, nil
}

// Describe turns an error from Grab (or ErrUsage) into the one-line message
// shown to users after "Error: ".
func Describe(err error) string {
	var statusErr *fetch.StatusError
	var parseErr *ParseError

	switch {
	case errors.Is(err, ErrUsage):
		return "No URL supplied."
	case errors.Is(err, fetch.ErrTransport):
		return "Failed to send request to address."
	case errors.As(err, &statusErr):
		return fmt.Sprintf("Request failed with code %d", statusErr.Code)
	case errors.As(err, &parseErr):
		return fmt.Sprintf("Failed to parse the webpage: %v", parseErr.Err)
	default:
		return err.Error()
	}
}
