package scraper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err, "result should always be valid RFC 3339")
	return parsed
}

// TestParseRelativeTime_HoursAgo verifies "2 hr. ago" lands two hours in
// the past.
func TestParseRelativeTime_HoursAgo(t *testing.T) {
	result := mustParse(t, ParseRelativeTime("2 hr. ago"))
	expected := time.Now().Add(-2 * time.Hour)

	assert.WithinDuration(t, expected, result, time.Second)
}

// TestParseRelativeTime_JustNow verifies immediacy phrases resolve to the
// current instant.
func TestParseRelativeTime_JustNow(t *testing.T) {
	result := mustParse(t, ParseRelativeTime("just now"))

	assert.WithinDuration(t, time.Now(), result, time.Second)
}

// TestParseRelativeTime_Units verifies each supported unit maps to the
// expected duration.
func TestParseRelativeTime_Units(t *testing.T) {
	tests := []struct {
		phrase string
		delta  time.Duration
	}{
		{"5 min ago", 5 * time.Minute},
		{"3 hours ago", 3 * time.Hour},
		{"2 days ago", 2 * 24 * time.Hour},
		{"1 week ago", 7 * 24 * time.Hour},
		{"4 months ago", 4 * 30 * 24 * time.Hour},
		{"2 years ago", 2 * 365 * 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			result := mustParse(t, ParseRelativeTime(tt.phrase))
			expected := time.Now().Add(-tt.delta)
			assert.WithinDuration(t, expected, result, 2*time.Second)
		})
	}
}

// TestParseRelativeTime_Totality verifies every input, however malformed,
// yields a parseable timestamp rather than an error.
func TestParseRelativeTime_Totality(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"yesterday",
		"some random text",
		"ago",
		"hr",
		"9999999999999999999 min ago", // overflows Atoi
		"日本語",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			result := mustParse(t, ParseRelativeTime(input))
			// Unrecognized phrases degrade to "now".
			assert.WithinDuration(t, time.Now(), result, time.Second)
		})
	}
}
