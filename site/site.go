package site

import (
	"net/url"
	"strings"
)

// Site identifies which extraction strategy applies to a URL.
type Site int

const (
	Generic Site = iota
	Reddit
	Twitter
	LinkedIn
	Feed
)

func (s Site) String() string {
	switch s {
	case Reddit:
		return "reddit"
	case Twitter:
		return "twitter"
	case LinkedIn:
		return "linkedin"
	case Feed:
		return "feed"
	default:
		return "generic"
	}
}

// ContentType is the coarse category of the fetched content.
type ContentType string

const (
	Post    ContentType = "Post"
	Comment ContentType = "Comment"
	Article ContentType = "Article"
)

// Hosts we fetch instead of the ones users link to. Old reddit is far
// lighter than the new site, and twitter.com requires JavaScript.
const (
	RedditHost = "old.reddit.com"
	NitterHost = "nitter.net"
)

// Profile describes how a single URL is fetched, extracted and labelled.
type Profile struct {
	Site        Site
	RequestURL  string
	Origin      string
	ContentType ContentType
}

// rule is one row of the dispatch table. Rules are tried in order and the
// first whose match function accepts the URL wins.
type rule struct {
	site    Site
	match   func(rawURL string) bool
	origin  string
	rewrite func(rawURL string) string
	kind    func(rawURL string) ContentType
}

func contains(substr string) func(string) bool {
	return func(rawURL string) bool {
		return strings.Contains(rawURL, substr)
	}
}

func always(ct ContentType) func(string) ContentType {
	return func(string) ContentType { return ct }
}

func keep(rawURL string) string {
	return rawURL
}

var rules = []rule{
	{
		site:    Reddit,
		match:   contains("reddit.com"),
		origin:  "Reddit",
		rewrite: func(u string) string { return rewriteHost(u, "reddit.com", RedditHost, "www.reddit.com") },
		kind: func(u string) ContentType {
			if strings.Contains(u, "/comment/") {
				return Comment
			}
			return Post
		},
	},
	{
		site:    Twitter,
		match:   contains("twitter.com"),
		origin:  "Twitter",
		rewrite: func(u string) string { return rewriteHost(u, "twitter.com", NitterHost, "twitter.com") },
		kind:    always(Post),
	},
	{
		site:    LinkedIn,
		match:   contains("linkedin.com"),
		origin:  "Linkedin",
		rewrite: keep,
		kind:    always(Post),
	},
}

// feedRule is only consulted when feed extraction has been turned on.
var feedRule = rule{
	site:    Feed,
	match:   IsFeedURL,
	origin:  "Feed",
	rewrite: keep,
	kind:    always(Article),
}

type options struct {
	feeds bool
}

// Option adjusts how Resolve builds its dispatch table.
type Option func(*options)

// WithFeeds enables the feed rule, which is tried after the known providers
// and before the generic fallback.
func WithFeeds(enabled bool) Option {
	return func(o *options) {
		o.feeds = enabled
	}
}

// Resolve picks the profile for rawURL. Matching is plain substring
// containment in table order, so a URL naming several providers resolves to
// whichever comes first (reddit, then twitter, then linkedin).
func Resolve(rawURL string, opts ...Option) Profile {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	table := rules
	if o.feeds {
		table = append(table[:len(table):len(table)], feedRule)
	}

	for _, r := range table {
		if !r.match(rawURL) {
			continue
		}
		return Profile{
			Site:        r.site,
			RequestURL:  r.rewrite(rawURL),
			Origin:      r.origin,
			ContentType: r.kind(rawURL),
		}
	}

	return Profile{
		Site:        Generic,
		RequestURL:  rawURL,
		Origin:      "",
		ContentType: Article,
	}
}

// rewriteHost replaces the host of rawURL with to when the host is domain or
// a subdomain of it. If rawURL has no parseable host, the literal from is
// replaced with to instead.
func rewriteHost(rawURL, domain, to, from string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return strings.Replace(rawURL, from, to, 1)
	}

	host := strings.ToLower(u.Hostname())
	if host != domain && !strings.HasSuffix(host, "."+domain) {
		// The domain only shows up somewhere else in the URL, such as the
		// query string. Leave the request alone.
		return rawURL
	}

	if port := u.Port(); port != "" {
		u.Host = to + ":" + port
	} else {
		u.Host = to
	}

	return u.String()
}

var feedSuffixes = []string{".rss", ".atom", ".xml", "/feed", "/rss", "/atom"}

// IsFeedURL reports whether rawURL looks like it points at an RSS or Atom
// document.
func IsFeedURL(rawURL string) bool {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}
	path = strings.TrimSuffix(strings.ToLower(path), "/")

	for _, suffix := range feedSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}
