package parsers

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func fixedClockParser() *DateParser {
	return NewDateParserAt(func() time.Time { return fixedNow })
}

func TestParseDateKnownLayouts(t *testing.T) {
	parser := fixedClockParser()

	cases := []struct {
		input    string
		expected time.Time
	}{
		{"2026-06-30", time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC)},
		{"30-06-2026", time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC)},
		{"30/06/2026", time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC)},
		{"June 30, 2026", time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC)},
		{"30 Jun 2026", time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC)},
		{"june 30, 2026", time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC)},
	}

	for _, testCase := range cases {
		parsed, ok := parser.ParseDate(testCase.input)
		require.True(t, ok, "input %q", testCase.input)
		assert.True(t, parsed.Equal(testCase.expected), "input %q parsed to %v", testCase.input, parsed)
	}
}

func TestParseDateRelativeExpressions(t *testing.T) {
	parser := fixedClockParser()

	cases := []struct {
		input    string
		expected time.Time
	}{
		{"today", fixedNow},
		{"tomorrow", fixedNow.AddDate(0, 0, 1)},
		{"next week", fixedNow.AddDate(0, 0, 7)},
		{"in 10 days", fixedNow.AddDate(0, 0, 10)},
		{"3 weeks from now", fixedNow.AddDate(0, 0, 21)},
		{"2 months from now", fixedNow.AddDate(0, 0, 60)},
	}

	for _, testCase := range cases {
		parsed, ok := parser.ParseDate(testCase.input)
		require.True(t, ok, "input %q", testCase.input)
		assert.True(t, parsed.Equal(testCase.expected), "input %q parsed to %v", testCase.input, parsed)
	}
}

func TestParseDateFuzzyIndianFormats(t *testing.T) {
	parser := fixedClockParser()

	cases := []struct {
		input    string
		expected time.Time
	}{
		{"15th aug 2026", time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC)},
		{"5 septembar 2026", time.Date(2026, time.September, 5, 0, 0, 0, 0, time.UTC)},
		{"12 dec 26", time.Date(2026, time.December, 12, 0, 0, 0, 0, time.UTC)},
		{"1 jan 99", time.Date(1999, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, testCase := range cases {
		parsed, ok := parser.ParseDate(testCase.input)
		require.True(t, ok, "input %q", testCase.input)
		assert.True(t, parsed.Equal(testCase.expected), "input %q parsed to %v", testCase.input, parsed)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	parser := fixedClockParser()

	for _, input := range []string{"", "apply soon", "31 feb 2026"} {
		_, ok := parser.ParseDate(input)
		assert.False(t, ok, "input %q", input)
	}
}

func TestExtractDeadlineIsolatesKeywordSentence(t *testing.T) {
	parser := fixedClockParser()

	text := "The scheme was announced on 1 January 2020. " +
		"Last date for application is 30 June 2026. Results follow later."

	deadline, ok := parser.ExtractDeadline(text)
	require.True(t, ok)
	assert.Equal(t, time.June, deadline.Month())
	assert.Equal(t, 2026, deadline.Year())
	assert.Equal(t, 30, deadline.Day())
}

func TestExtractDeadlineAbsent(t *testing.T) {
	parser := fixedClockParser()

	_, ok := parser.ExtractDeadline("Scholarship for meritorious students of Karnataka.")
	assert.False(t, ok)
}

func TestIsValidDeadlineWindow(t *testing.T) {
	parser := fixedClockParser()

	assert.True(t, parser.IsValidDeadline(fixedNow.AddDate(0, 1, 0)))
	assert.True(t, parser.IsValidDeadline(fixedNow.Add(-12*time.Hour)))
	assert.False(t, parser.IsValidDeadline(fixedNow.AddDate(0, 0, -3)))
	assert.False(t, parser.IsValidDeadline(fixedNow.AddDate(6, 0, 0)))
	assert.False(t, parser.IsValidDeadline(time.Time{}))
}

func TestDeadlineCountdownHelpers(t *testing.T) {
	parser := fixedClockParser()

	assert.Equal(t, 10, parser.DaysUntilDeadline(fixedNow.AddDate(0, 0, 10)))
	assert.Equal(t, -1, parser.DaysUntilDeadline(time.Time{}))

	assert.True(t, parser.IsDeadlineApproaching(fixedNow.AddDate(0, 0, 5), 7))
	assert.False(t, parser.IsDeadlineApproaching(fixedNow.AddDate(0, 0, 20), 7))
	assert.False(t, parser.IsDeadlineApproaching(fixedNow.AddDate(0, 0, -2), 7))
}

func TestFormatDateIndian(t *testing.T) {
	assert.Equal(t, "30 June 2026", FormatDateIndian(time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "", FormatDateIndian(time.Time{}))
}

func TestParseDateRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	parser := fixedClockParser()

	properties.Property("ISO formatted dates survive a parse round trip", prop.ForAll(
		func(year, month, day int) bool {
			date := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
			date = date.AddDate(0, 0, day%date.AddDate(0, 1, -1).Day())
			parsed, ok := parser.ParseDate(date.Format("2006-01-02"))
			return ok && parsed.Equal(date)
		},
		gen.IntRange(2000, 2040),
		gen.IntRange(1, 12),
		gen.IntRange(0, 30),
	))

	properties.Property("future offsets in days are never flagged as past", prop.ForAll(
		func(days int) bool {
			return parser.IsValidDeadline(fixedNow.AddDate(0, 0, days))
		},
		gen.IntRange(0, 365*4),
	))

	properties.TestingRun(t)
}
