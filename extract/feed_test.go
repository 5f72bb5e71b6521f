package extract

import (
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/pevans/postline/site"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Example Blog</title>
  <link>https://example.com/</link>
  <item>
    <title>Older post</title>
    <link>https://example.com/older</link>
    <description>Old news</description>
    <pubDate>Sun, 01 Jan 2023 12:00:00 GMT</pubDate>
  </item>
  <item>
    <title> Newer post </title>
    <link>https://example.com/newer</link>
    <description><![CDATA[<p>Fresh <b>news</b></p>]]></description>
    <pubDate>Mon, 02 Jan 2023 09:15:00 GMT</pubDate>
  </item>
</channel>
</rss>`

// TestFeed_NewestItem verifies the most recent entry is extracted
func TestFeed_NewestItem(t *testing.T) {
	doc := parse(t, rssFixture)

	rec, err := Feed{}.Extract(doc, site.Article)
	require.NoError(t, err)

	expected := time.Date(2023, 1, 2, 9, 15, 0, 0, time.UTC)
	assert.True(t, expected.Equal(rec.PublishedAt), "got %v", rec.PublishedAt)
	assert.Equal(t, time.Local, rec.PublishedAt.Location())
	assert.Equal(t, "Newer post", rec.Title)
	assert.Equal(t, "Fresh news", rec.Text)
}

// TestFeed_Undated verifies undated feeds fall back to the current time
func TestFeed_Undated(t *testing.T) {
	freezeTime(t)
	doc := parse(t, `<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Notes</title>
  <entry><title>Only entry</title><summary>Short note</summary></entry>
</feed>`)

	rec, err := Feed{}.Extract(doc, site.Article)
	require.NoError(t, err)

	assert.True(t, fixedNow.Equal(rec.PublishedAt))
	assert.Equal(t, "Only entry", rec.Title)
	assert.Equal(t, "Short note", rec.Text)
}

// TestFeed_Empty verifies feeds with no items fail
func TestFeed_Empty(t *testing.T) {
	doc := parse(t, `<?xml version="1.0"?><rss version="2.0"><channel><title>Empty</title></channel></rss>`)

	_, err := Feed{}.Extract(doc, site.Article)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

// TestFeed_NotAFeed verifies HTML pages are rejected
func TestFeed_NotAFeed(t *testing.T) {
	doc := parse(t, `<html><head><title>Not a feed</title></head></html>`)

	_, err := Feed{}.Extract(doc, site.Article)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse feed")
}

// TestNewestItem_PrefersDated verifies a dated item beats an undated first
// item
func TestNewestItem_PrefersDated(t *testing.T) {
	at := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	items := []*gofeed.Item{
		{Title: "undated"},
		nil,
		{Title: "dated", UpdatedParsed: &at},
	}

	assert.Equal(t, "dated", newestItem(items).Title)
	assert.Nil(t, newestItem(nil))
}
