package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

// Layouts that dateparse does not recognize on its own. Nitter renders
// "Jan 2, 2006 · 3:04 PM UTC"; callers strip the middle dot first.
var dateLayouts = []string{
	"Jan 2, 2006 3:04 PM MST",
	"Jan 2, 2006 15:04 MST",
	"Jan 2, 2006 3:04 PM",
}

// reRelative matches the short ages linkedin shows, like "3d" or "5mo".
var reRelative = regexp.MustCompile(`^(\d+)(s|m|h|d|w|mo|y|yr)$`)

// ParseDate interprets s as a point in time and returns it in the local time
// zone. Besides anything dateparse understands, it accepts nitter's
// timestamps and relative ages, which are counted back from ref.
func ParseDate(s string, ref time.Time) (time.Time, error) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty string", ErrInvalidDate)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.In(time.Local), nil
		}
	}

	if t, ok := parseRelative(s, ref); ok {
		return t.In(time.Local), nil
	}

	t, err := dateparse.ParseIn(s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrInvalidDate, s, err)
	}

	return t.In(time.Local), nil
}

// parseRelative turns an age such as "2w" into ref minus that age.
func parseRelative(s string, ref time.Time) (time.Time, bool) {
	m := reRelative.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return time.Time{}, false
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, false
	}

	switch m[2] {
	case "s":
		return ref.Add(-time.Duration(n) * time.Second), true
	case "m":
		return ref.Add(-time.Duration(n) * time.Minute), true
	case "h":
		return ref.Add(-time.Duration(n) * time.Hour), true
	case "d":
		return ref.AddDate(0, 0, -n), true
	case "w":
		return ref.AddDate(0, 0, -7*n), true
	case "mo":
		return ref.AddDate(0, -n, 0), true
	default:
		return ref.AddDate(-n, 0, 0), true
	}
}

// timeAttr parses the datetime attribute of the first time node beneath s.
func timeAttr(s *goquery.Selection) (time.Time, error) {
	node, err := find(s, "time")
	if err != nil {
		return time.Time{}, err
	}

	value, ok := node.Attr("datetime")
	if !ok {
		return time.Time{}, fmt.Errorf("%w: time[datetime]", ErrAttributeMissing)
	}

	return ParseDate(value, now())
}
