package utils

import (
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatingToStars(t *testing.T) {
	cases := map[string]string{
		"8":     "★★★★",
		"7":     "★★★½",
		"10":    "★★★★★",
		"4.5":   "★★★★½",
		"3":     "★★★",
		"0.5":   "½",
		"0":     "",
		"-2":    "",
		"":      "",
		"★★★":   "★★★",
		"★★½":   "★★½",
		" 4 ":   "★★★★",
		"n/a":   "n/a",
		"great": "great",
	}
	for in, want := range cases {
		assert.Equal(t, want, RatingToStars(in), "input %q", in)
	}
}

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "ex machina", NormalizeTitle("Ex Machina (2015)", "2015"))
	assert.Equal(t, "ex machina", NormalizeTitle("Ex Machina, 2015", ""))
	assert.Equal(t, "amelie", NormalizeTitle("Amélie", "2001"))
	assert.Equal(t, "walle", NormalizeTitle("WALL·E", "2008"))
	assert.Equal(t, "heat", NormalizeTitle("  Heat  ", "1995"))
	assert.Equal(t, "blade runner", NormalizeTitle("Blade Runner 2049", "2049"))
	assert.Equal(t, "", NormalizeTitle("", "1995"))
}

func TestCleanupText(t *testing.T) {
	assert.Equal(t, "Tom & Jerry", CleanupText("<![CDATA[Tom &amp; Jerry]]>"))
	assert.Equal(t, "a b", CleanupText("<p>a</p>\n\n<p>b</p>"))
	assert.Equal(t, `"quoted" it's`, CleanupText("&quot;quoted&quot; it&#39;s"))
	assert.Equal(t, "é", CleanupText("&#xE9;"))
	assert.Equal(t, "", CleanupText("   "))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "ab...", Truncate("abc", 2))

	long := strings.Repeat("影", 300)
	out := Truncate(long, 240)
	assert.Equal(t, 243, len([]rune(out)))
	assert.True(t, strings.HasSuffix(out, "..."))
}

func TestParseDate(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	got := ParseDate("2020-05-01", ny)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2020, 5, 1, 4, 0, 0, 0, time.UTC), *got)
	assert.Equal(t, "2020-05-01", DayKey(got, ny))

	rss := ParseDate("Fri, 01 May 2020 12:00:00 +0000", ny)
	require.NotNil(t, rss)
	assert.Equal(t, time.Date(2020, 5, 1, 12, 0, 0, 0, time.UTC), *rss)

	iso := ParseDate("2020-05-01T12:00:00Z", nil)
	require.NotNil(t, iso)
	assert.Equal(t, "2020-05-01", DayKey(iso, time.UTC))

	assert.Nil(t, ParseDate("", ny))
	assert.Nil(t, ParseDate("not a date", ny))
	assert.Equal(t, "", DayKey(nil, ny))
}
