package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var relativeTimeRe = regexp.MustCompile(`(\d+)\s*(min|hr|hour|day|week|month|year)`)

// ParseRelativeTime converts a phrase like "3 hr. ago" into an absolute
// RFC 3339 timestamp. It is total: anything it cannot interpret degrades
// to the current instant rather than an error. Reddit only exposes coarse
// relative phrases for recent posts, so precision beyond minutes is not
// attempted; months and years use flat 30/365-day approximations.
func ParseRelativeTime(phrase string) string {
	now := time.Now()
	phrase = strings.ToLower(strings.TrimSpace(phrase))

	if strings.Contains(phrase, "now") {
		return now.Format(time.RFC3339)
	}

	m := relativeTimeRe.FindStringSubmatch(phrase)
	if m == nil {
		return now.Format(time.RFC3339)
	}

	value, err := strconv.Atoi(m[1])
	if err != nil {
		return now.Format(time.RFC3339)
	}

	var delta time.Duration
	switch m[2] {
	case "min":
		delta = time.Duration(value) * time.Minute
	case "hr", "hour":
		delta = time.Duration(value) * time.Hour
	case "day":
		delta = time.Duration(value) * 24 * time.Hour
	case "week":
		delta = time.Duration(value) * 7 * 24 * time.Hour
	case "month":
		delta = time.Duration(value) * 30 * 24 * time.Hour
	case "year":
		delta = time.Duration(value) * 365 * 24 * time.Hour
	}

	return now.Add(-delta).Format(time.RFC3339)
}
