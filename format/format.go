// Package format renders an extracted record as one tab-delimited line.
package format

import (
	"strings"

	"github.com/pevans/postline/extract"
	"github.com/pevans/postline/site"
)

// TimeLayout is the layout of the timestamp field.
const TimeLayout = "2006-01-02 15:04:05"

// Options controls which fields are written.
type Options struct {
	// IncludeTitle adds the title between the content type and the body.
	IncludeTitle bool
}

// flatten keeps a value on one line and inside one field.
var flatten = strings.NewReplacer(
	"\r\n", " ",
	"\r", " ",
	"\n", " ",
	"\t", " ",
)

// Line renders rec. The URL written is the one the user asked for, not the
// rewritten one that was fetched. The result has no trailing newline.
func Line(rec *extract.Record, rawURL string, p site.Profile, opts Options) string {
	fields := []string{
		rec.PublishedAt.Format(TimeLayout),
		rawURL,
		p.Origin,
		string(p.ContentType),
	}

	if opts.IncludeTitle {
		fields = append(fields, flatten.Replace(rec.Title))
	}

	fields = append(fields, flatten.Replace(rec.Text))

	return strings.Join(fields, "\t")
}
