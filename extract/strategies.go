package extract

import (
	"fmt"
	"strings"

	"github.com/pevans/postline/site"
)

// Generic handles sites we know nothing about. The page carries no date we
// can rely on, so the record is stamped with the current time and the title
// doubles as the body.
type Generic struct{}

func (Generic) Extract(doc *Document, _ site.ContentType) (*Record, error) {
	title, err := pageTitle(doc)
	if err != nil {
		return nil, err
	}

	return &Record{
		PublishedAt: now(),
		Title:       title,
		Text:        title,
	}, nil
}

// Reddit reads old.reddit.com markup.
type Reddit struct{}

func (Reddit) Extract(doc *Document, ct site.ContentType) (*Record, error) {
	if ct == site.Comment {
		comment, err := find(doc.Selection, "div.comment")
		if err != nil {
			return nil, err
		}

		published, err := timeAttr(comment)
		if err != nil {
			return nil, err
		}

		title, err := pageTitle(doc)
		if err != nil {
			return nil, err
		}

		text, err := findText(comment, "div.usertext-body")
		if err != nil {
			return nil, err
		}

		return &Record{PublishedAt: published, Title: title, Text: text}, nil
	}

	post, err := find(doc.Selection, "div.entry")
	if err != nil {
		return nil, err
	}

	published, err := timeAttr(post)
	if err != nil {
		return nil, err
	}

	title, err := findText(post, "a.title")
	if err != nil {
		return nil, err
	}

	text, err := findText(post, "div.usertext-body")
	if err != nil {
		return nil, err
	}

	return &Record{PublishedAt: published, Title: title, Text: text}, nil
}

// Nitter reads tweets as rendered by a nitter instance.
type Nitter struct{}

const nitterTitleSuffix = " | nitter"

func (Nitter) Extract(doc *Document, _ site.ContentType) (*Record, error) {
	tweet, err := find(doc.Selection, "div.main-tweet")
	if err != nil {
		return nil, err
	}

	stamp, err := findText(tweet, "p.tweet-published")
	if err != nil {
		return nil, err
	}

	published, err := ParseDate(strings.ReplaceAll(stamp, "·", ""), now())
	if err != nil {
		return nil, err
	}

	title, err := pageTitle(doc)
	if err != nil {
		return nil, err
	}

	text, err := findText(tweet, "div.tweet-content.media-body")
	if err != nil {
		return nil, err
	}

	return &Record{
		PublishedAt: published,
		Title:       strings.TrimSuffix(title, nitterTitleSuffix),
		Text:        text,
	}, nil
}

// LinkedIn reads public linkedin post pages.
type LinkedIn struct{}

func (LinkedIn) Extract(doc *Document, _ site.ContentType) (*Record, error) {
	post, err := find(doc.Selection, "article")
	if err != nil {
		return nil, err
	}

	stamp, err := findText(post, "time")
	if err != nil {
		return nil, err
	}

	// The time node reads like "2d Edited"; only the first word is a date.
	fields := strings.Fields(stamp)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty time node", ErrInvalidDate)
	}

	published, err := ParseDate(fields[0], now())
	if err != nil {
		return nil, err
	}

	title, err := pageTitle(doc)
	if err != nil {
		return nil, err
	}

	text, err := findText(post, "p.attributed-text-segment-list__content")
	if err != nil {
		return nil, err
	}

	return &Record{PublishedAt: published, Title: title, Text: text}, nil
}
