package extract

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/pevans/postline/site"
)

// Feed reads the newest entry of an RSS or Atom document. gofeed handles
// both formats, so the document's raw bytes are parsed again as a feed.
type Feed struct{}

func (Feed) Extract(doc *Document, _ site.ContentType) (*Record, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(doc.Raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	item := newestItem(feed.Items)
	if item == nil {
		return nil, fmt.Errorf("%w: feed item", ErrNodeNotFound)
	}

	published := now()
	if t := itemTime(item); t != nil {
		published = *t
	}

	// Prefer the full content; fall back to the summary.
	body := item.Content
	if body == "" {
		body = item.Description
	}

	return &Record{
		PublishedAt: published.In(time.Local),
		Title:       strings.TrimSpace(item.Title),
		Text:        stripMarkup(body),
	}, nil
}

// itemTime is the item's published date, or its updated date, or nil.
func itemTime(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	return item.UpdatedParsed
}

// newestItem returns the most recently dated item. Undated items only win
// when nothing in the feed has a date, in which case the first one is used.
func newestItem(items []*gofeed.Item) *gofeed.Item {
	var newest *gofeed.Item
	var newestAt *time.Time

	for _, item := range items {
		if item == nil {
			continue
		}
		if newest == nil {
			newest = item
			newestAt = itemTime(item)
			continue
		}

		at := itemTime(item)
		if at == nil {
			continue
		}
		if newestAt == nil || at.After(*newestAt) {
			newest = item
			newestAt = at
		}
	}

	return newest
}

// stripMarkup returns the text content of an HTML fragment.
func stripMarkup(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.TrimSpace(doc.Text())
}
