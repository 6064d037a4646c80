package parsers

import (
	"html"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	wordPattern       = regexp.MustCompile(`\b[a-zA-Z]{3,}\b`)
	emailPattern      = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	nonDigitPattern   = regexp.MustCompile(`[^\d+]`)

	// Indian phone number shapes, longest first so the most specific wins.
	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\+91[-\s]?\d{10}`),
		regexp.MustCompile(`\b91[-\s]?\d{10}\b`),
		regexp.MustCompile(`\b\d{10}\b`),
	}

	textStopWords = map[string]struct{}{
		"the": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {}, "at": {},
		"to": {}, "for": {}, "of": {}, "with": {}, "by": {}, "from": {}, "up": {},
		"about": {}, "into": {}, "through": {}, "during": {}, "before": {},
		"after": {}, "above": {}, "below": {}, "between": {}, "among": {},
		"this": {}, "that": {}, "these": {}, "those": {}, "is": {}, "are": {},
		"was": {}, "were": {}, "been": {}, "being": {}, "have": {}, "has": {},
		"had": {}, "do": {}, "does": {}, "did": {}, "will": {}, "would": {},
		"could": {}, "should": {}, "may": {}, "might": {}, "must": {},
		"can": {}, "shall": {},
	}
)

// CleanText normalizes raw HTML-derived text: entity decoding, unicode
// compatibility decomposition, whitespace collapse and trim. Pure function;
// empty input yields empty output.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	text = html.UnescapeString(text)
	text = norm.NFKD.String(text)
	text = whitespacePattern.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

// ExtractKeywords returns up to 20 deduplicated, stopword-stripped keywords
// from the text, preserving first-seen order.
func ExtractKeywords(text string) []string {
	if text == "" {
		return nil
	}

	words := wordPattern.FindAllString(strings.ToLower(text), -1)

	seen := make(map[string]struct{}, len(words))
	var keywords []string
	for _, word := range words {
		if _, stop := textStopWords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
		if len(keywords) == 20 {
			break
		}
	}

	return keywords
}

// ExtractEmailAddresses extracts deduplicated email addresses from text.
func ExtractEmailAddresses(text string) []string {
	if text == "" {
		return nil
	}

	matches := emailPattern.FindAllString(text, -1)
	seen := make(map[string]struct{}, len(matches))
	var emails []string
	for _, match := range matches {
		if _, dup := seen[match]; dup {
			continue
		}
		seen[match] = struct{}{}
		emails = append(emails, match)
	}
	return emails
}

// ExtractPhoneNumbers extracts Indian-format phone numbers from text,
// normalized to digits (with optional leading +).
func ExtractPhoneNumbers(text string) []string {
	if text == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var phones []string
	for _, pattern := range phonePatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			cleaned := nonDigitPattern.ReplaceAllString(match, "")
			if len(strings.TrimPrefix(cleaned, "+")) < 10 {
				continue
			}
			if _, dup := seen[cleaned]; dup {
				continue
			}
			seen[cleaned] = struct{}{}
			phones = append(phones, cleaned)
		}
	}
	return phones
}

// TruncateText shortens text to maxLength, preferring a word boundary when
// one falls reasonably close to the limit.
func TruncateText(text string, maxLength int, suffix string) string {
	if text == "" {
		return ""
	}
	if len(text) <= maxLength {
		return text
	}

	cut := maxLength - len(suffix)
	if cut < 0 {
		cut = 0
	}
	truncated := text[:cut]
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > int(float64(maxLength)*0.7) {
		truncated = truncated[:lastSpace]
	}

	return truncated + suffix
}

// SplitSentences splits free text on sentence terminators, dropping empty
// segments. Shared by the date and amount extraction paths.
func SplitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case '.', '!', '?', ';':
			return true
		}
		return false
	})

	var sentences []string
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences
}
