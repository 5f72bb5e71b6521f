// Package extract pulls a publication date, title and body text out of a
// fetched page. Each supported site has its own Extractor that knows where
// that site keeps those three things in its markup.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/postline/site"
)

// Extraction errors.
var (
	ErrNodeNotFound     = errors.New("node not found")
	ErrAttributeMissing = errors.New("attribute missing")
	ErrInvalidDate      = errors.New("invalid date")
)

// now is swapped out in tests.
var now = time.Now

// Record is the result of extracting a page.
type Record struct {
	PublishedAt time.Time
	Title       string
	Text        string
}

// Document is a parsed page along with the bytes it was parsed from.
type Document struct {
	*goquery.Document
	Raw []byte
}

// NewDocument parses raw as HTML. The reader r, if non-nil, is parsed in
// place of raw; this lets callers hand over a charset-decoded stream while
// keeping the raw bytes.
func NewDocument(raw []byte, r io.Reader) (*Document, error) {
	if r == nil {
		r = bytes.NewReader(raw)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return &Document{Document: doc, Raw: raw}, nil
}

// Extractor turns a document into a record.
type Extractor interface {
	Extract(doc *Document, ct site.ContentType) (*Record, error)
}

// For returns the extractor used for s.
func For(s site.Site) Extractor {
	switch s {
	case site.Reddit:
		return Reddit{}
	case site.Twitter:
		return Nitter{}
	case site.LinkedIn:
		return LinkedIn{}
	case site.Feed:
		return Feed{}
	default:
		return Generic{}
	}
}

// find returns the first match of selector beneath s, or ErrNodeNotFound.
func find(s *goquery.Selection, selector string) (*goquery.Selection, error) {
	found := s.Find(selector).First()
	if found.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, selector)
	}
	return found, nil
}

// findText is find followed by trimming the node's text.
func findText(s *goquery.Selection, selector string) (string, error) {
	found, err := find(s, selector)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(found.Text()), nil
}

// pageTitle is the text of the document's first title node.
func pageTitle(doc *Document) (string, error) {
	return findText(doc.Selection, "title")
}
