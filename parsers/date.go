package parsers

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DeadlinePastTolerance allows deadlines up to one day in the past, covering
// listings scraped just after their closing date in another timezone.
const DeadlinePastTolerance = 24 * time.Hour

// DeadlineFutureHorizon bounds how far ahead a deadline may plausibly be.
const DeadlineFutureHorizon = 5 * 365 * 24 * time.Hour

var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"01/02/2006",
	"2006/01/02",
	"02-01-06",
	"02/01/06",
	"2006-01-02 15:04:05",
	"02-01-2006 15:04:05",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2 2006",
	"Jan 2 2006",
}

var monthNumbers = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

var deadlineKeywords = []string{
	"deadline", "last date", "closing date", "due date", "final date",
	"submission date", "application closes", "before", "by", "until",
}

var (
	fuzzyDatePattern      = regexp.MustCompile(`(\d{1,2})[^\w]*([a-z]+)[^\w]*(\d{2,4})`)
	ordinalSuffixPattern  = regexp.MustCompile(`(\d)(?:st|nd|rd|th)\b`)

	embeddedDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})\b`),
		regexp.MustCompile(`\b(\d{1,2})\s+([a-z]+)\s+(\d{2,4})\b`),
		regexp.MustCompile(`\b([a-z]+)\s+(\d{1,2}),?\s+(\d{2,4})\b`),
	}

	relativeDayPattern   = regexp.MustCompile(`(\d+)\s*days?\s*(ago|from\s*now)`)
	relativeWeekPattern  = regexp.MustCompile(`(\d+)\s*weeks?\s*(ago|from\s*now)`)
	relativeMonthPattern = regexp.MustCompile(`(\d+)\s*months?\s*(ago|from\s*now)`)
	inDurationPattern    = regexp.MustCompile(`in\s*(\d+)\s*(days?|weeks?|months?)`)
)

// DateParser parses absolute, relative and loosely formatted Indian dates.
// The clock is injectable so relative expressions and plausibility checks
// are deterministic under test.
type DateParser struct {
	now func() time.Time
}

// NewDateParser creates a date parser using the wall clock.
func NewDateParser() *DateParser {
	return &DateParser{now: time.Now}
}

// NewDateParserAt creates a date parser with a fixed reference clock.
func NewDateParserAt(clock func() time.Time) *DateParser {
	return &DateParser{now: clock}
}

// ParseDate parses a date string. It tries known layouts, then relative
// expressions, then a fuzzy day-month-year match, then a permissive library
// parse. Returns (zero, false) when nothing matches.
func (parser *DateParser) ParseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}

	cleaned := strings.ToLower(strings.TrimSpace(raw))

	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, strings.TrimSpace(raw)); err == nil {
			return parsed, true
		}
		// Layouts with month names need title case to match.
		if parsed, err := time.Parse(layout, titleCaseWords(cleaned)); err == nil {
			return parsed, true
		}
	}

	if relative, ok := parser.parseRelativeDate(cleaned); ok {
		return relative, true
	}

	if fuzzy, ok := parser.parseFuzzyDate(cleaned); ok {
		return fuzzy, true
	}

	if parsed, err := dateparse.ParseAny(strings.TrimSpace(raw)); err == nil {
		return parsed, true
	}

	return time.Time{}, false
}

// parseRelativeDate handles expressions like "tomorrow", "next week" and
// "in 10 days".
func (parser *DateParser) parseRelativeDate(text string) (time.Time, bool) {
	now := parser.now()

	switch {
	case strings.Contains(text, "today"):
		return now, true
	case strings.Contains(text, "tomorrow"):
		return now.AddDate(0, 0, 1), true
	case strings.Contains(text, "yesterday"):
		return now.AddDate(0, 0, -1), true
	case strings.Contains(text, "next week"):
		return now.AddDate(0, 0, 7), true
	case strings.Contains(text, "last week"):
		return now.AddDate(0, 0, -7), true
	case strings.Contains(text, "next month"):
		return now.AddDate(0, 0, 30), true
	case strings.Contains(text, "last month"):
		return now.AddDate(0, 0, -30), true
	case strings.Contains(text, "next year"):
		return now.AddDate(1, 0, 0), true
	case strings.Contains(text, "last year"):
		return now.AddDate(-1, 0, 0), true
	}

	if match := inDurationPattern.FindStringSubmatch(text); match != nil {
		count, _ := strconv.Atoi(match[1])
		switch {
		case strings.HasPrefix(match[2], "day"):
			return now.AddDate(0, 0, count), true
		case strings.HasPrefix(match[2], "week"):
			return now.AddDate(0, 0, count*7), true
		case strings.HasPrefix(match[2], "month"):
			return now.AddDate(0, 0, count*30), true
		}
	}

	offsets := []struct {
		pattern *regexp.Regexp
		days    int
	}{
		{relativeDayPattern, 1},
		{relativeWeekPattern, 7},
		{relativeMonthPattern, 30},
	}
	for _, offset := range offsets {
		match := offset.pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		count, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		days := count * offset.days
		if match[2] == "ago" {
			days = -days
		}
		return now.AddDate(0, 0, days), true
	}

	return time.Time{}, false
}

// parseFuzzyDate matches loose day-month-year text like "15th aug 2026" or
// "5 september, 25" where the month may be abbreviated or misspelled past
// its first three letters. Two-digit years are windowed at 50.
func (parser *DateParser) parseFuzzyDate(text string) (time.Time, bool) {
	text = ordinalSuffixPattern.ReplaceAllString(text, "$1")

	match := fuzzyDatePattern.FindStringSubmatch(text)
	if match == nil {
		return time.Time{}, false
	}

	day, err := strconv.Atoi(match[1])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}

	month, ok := resolveMonth(match[2])
	if !ok {
		return time.Time{}, false
	}

	year, err := strconv.Atoi(match[3])
	if err != nil {
		return time.Time{}, false
	}
	if year < 100 {
		if year < 50 {
			year += 2000
		} else {
			year += 1900
		}
	}

	parsed := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if parsed.Day() != day || parsed.Month() != month {
		// Normalization means the day overflowed the month.
		return time.Time{}, false
	}
	return parsed, true
}

func resolveMonth(name string) (time.Month, bool) {
	if month, exact := monthNumbers[name]; exact {
		return month, true
	}
	if len(name) < 3 {
		return 0, false
	}
	prefix := name[:3]
	for candidate, month := range monthNumbers {
		if strings.HasPrefix(candidate, prefix) || strings.HasPrefix(name, candidate[:3]) {
			return month, true
		}
	}
	return 0, false
}

// ExtractDeadline finds a deadline date inside free text by isolating
// sentences around deadline keywords before parsing, so unrelated dates in
// the surrounding text are not mistaken for the closing date.
func (parser *DateParser) ExtractDeadline(text string) (time.Time, bool) {
	if text == "" {
		return time.Time{}, false
	}

	lower := strings.ToLower(text)

	for _, sentence := range SplitSentences(lower) {
		if !containsAny(sentence, deadlineKeywords...) {
			continue
		}

		if date, ok := parser.ParseDate(sentence); ok {
			return date, true
		}

		for _, pattern := range embeddedDatePatterns {
			for _, match := range pattern.FindAllStringSubmatch(sentence, -1) {
				candidate := strings.Join(match[1:], " ")
				if date, ok := parser.ParseDate(candidate); ok {
					return date, true
				}
			}
		}
	}

	return time.Time{}, false
}

// IsValidDeadline reports whether a deadline is plausible: at most one day in
// the past and no more than five years ahead.
func (parser *DateParser) IsValidDeadline(deadline time.Time) bool {
	if deadline.IsZero() {
		return false
	}

	now := parser.now()
	if deadline.Before(now.Add(-DeadlinePastTolerance)) {
		return false
	}
	if deadline.After(now.Add(DeadlineFutureHorizon)) {
		return false
	}
	return true
}

// DaysUntilDeadline returns whole days remaining until the deadline,
// negative when it has passed.
func (parser *DateParser) DaysUntilDeadline(deadline time.Time) int {
	if deadline.IsZero() {
		return -1
	}
	return int(deadline.Sub(parser.now()).Hours() / 24)
}

// IsDeadlineApproaching reports whether the deadline falls within the next
// thresholdDays days.
func (parser *DateParser) IsDeadlineApproaching(deadline time.Time, thresholdDays int) bool {
	remaining := parser.DaysUntilDeadline(deadline)
	return remaining >= 0 && remaining <= thresholdDays
}

func titleCaseWords(text string) string {
	words := strings.Fields(text)
	for index, word := range words {
		if word == "" {
			continue
		}
		words[index] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// FormatDateIndian renders a date in the "2 January 2006" style common on
// Indian portals.
func FormatDateIndian(date time.Time) string {
	if date.IsZero() {
		return ""
	}
	return date.Format("2 January 2006")
}
