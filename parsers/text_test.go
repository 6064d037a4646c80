package parsers

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestCleanTextNormalizes(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"  National   Scholarship\t\nPortal  ", "National Scholarship Portal"},
		{"Apply &amp; win", "Apply & win"},
		{"", ""},
	}

	for _, testCase := range cases {
		assert.Equal(t, testCase.expected, CleanText(testCase.input), "input %q", testCase.input)
	}
}

func TestExtractKeywordsDropsStopWords(t *testing.T) {
	keywords := ExtractKeywords("The scholarship for the meritorious students of India")

	assert.Contains(t, keywords, "scholarship")
	assert.Contains(t, keywords, "meritorious")
	assert.NotContains(t, keywords, "the")
	assert.NotContains(t, keywords, "for")
	assert.LessOrEqual(t, len(keywords), 20)
}

func TestExtractContactDetails(t *testing.T) {
	text := "Contact scholarships@gov.in or call +91 9876543210 for queries."

	emails := ExtractEmailAddresses(text)
	assert.Equal(t, []string{"scholarships@gov.in"}, emails)

	phones := ExtractPhoneNumbers(text)
	assert.NotEmpty(t, phones)
}

func TestTruncateTextRespectsWordBoundary(t *testing.T) {
	text := "National merit scholarship for undergraduate students"

	truncated := TruncateText(text, 30, "...")
	assert.LessOrEqual(t, len(truncated), 30)
	assert.True(t, strings.HasSuffix(truncated, "..."))
	assert.False(t, strings.HasSuffix(strings.TrimSuffix(truncated, "..."), " "))

	assert.Equal(t, text, TruncateText(text, 200, "..."))
}

func TestTruncateTextLimitShorterThanSuffix(t *testing.T) {
	assert.Equal(t, "...", TruncateText("National merit scholarship", 2, "..."))
	assert.Equal(t, "", TruncateText("", 2, "..."))
}

func TestDetermineCategory(t *testing.T) {
	cases := []struct {
		title    string
		expected string
	}{
		{"Merit cum means scholarship for toppers", "merit"},
		{"Scholarship for girl students", "women"},
		{"Post matric scholarship for scheduled caste students", "sc"},
		{"PhD research fellowship in innovation", "science"},
		{"State scheme for farmers", "general"},
	}

	for _, testCase := range cases {
		assert.Equal(t, testCase.expected, DetermineCategory(testCase.title, ""), "title %q", testCase.title)
	}
}

func TestDetermineEducationLevel(t *testing.T) {
	assert.Equal(t, "post-matric", DetermineEducationLevel("Scholarship for class 12 students", "", nil))
	assert.Equal(t, "graduation", DetermineEducationLevel("Undergraduate merit award", "", nil))
	assert.Equal(t, "doctorate", DetermineEducationLevel("", "support for phd scholars", nil))
	assert.Equal(t, "all-levels", DetermineEducationLevel("General scheme", "", nil))
}

func TestDetermineState(t *testing.T) {
	assert.Equal(t, "Karnataka", DetermineState("Karnataka state scholarship", "", nil))
	assert.Equal(t, "Tamil Nadu", DetermineState("Scheme for TN students", "", nil))
	assert.Equal(t, "All India", DetermineState("National scholarship scheme", "", nil))
}

func TestGenerateTagsDeduplicates(t *testing.T) {
	tags := GenerateTags(
		"Government scholarship for engineering students",
		"A government scholarship for students of IIT and NIT",
		nil,
	)

	counts := make(map[string]int)
	for _, tag := range tags {
		counts[tag]++
	}
	for tag, count := range counts {
		assert.Equal(t, 1, count, "tag %q repeated", tag)
	}

	assert.Contains(t, tags, "scholarship")
	assert.Contains(t, tags, "government")
	assert.Contains(t, tags, "engineering")
	assert.Contains(t, tags, "iit")
}

func TestCleanTextIdempotentProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("cleaning is idempotent", prop.ForAll(
		func(text string) bool {
			cleaned := CleanText(text)
			return CleanText(cleaned) == cleaned
		},
		gen.AlphaString(),
	))

	properties.Property("cleaned text never carries leading or trailing space", prop.ForAll(
		func(text string) bool {
			cleaned := CleanText(" " + text + " ")
			return cleaned == strings.TrimSpace(cleaned)
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
