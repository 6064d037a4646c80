package parsers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Multipliers of the Indian numbering system.
const (
	multiplierHundred  = 100
	multiplierThousand = 1_000
	multiplierLakh     = 100_000
	multiplierCrore    = 10_000_000
)

// AmountSanityUpperBound is the largest amount considered plausible for a
// single scholarship (5 crore).
const AmountSanityUpperBound = 5 * multiplierCrore

// AmountSanityLowerBound is the smallest amount considered plausible.
const AmountSanityLowerBound = 100

var (
	rupeeAmountPattern   = regexp.MustCompile(`(?i)(?:₹|rs\.?|rupees?|inr)\s*(\d+(?:,\d+)*(?:\.\d+)?)`)
	lakhAmountPattern    = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:lakh|lac)s?`)
	croreAmountPattern   = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*crores?`)
	thousandPattern      = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:thousand|k)\b`)
	plainNumericPattern  = regexp.MustCompile(`(\d+(?:,\d+)*(?:\.\d+)?)`)
	wordAmountPattern    = regexp.MustCompile(`(?i)([a-z]+)\s+(lakh|lac|crore|thousand|hundred)s?`)
	rangeMarkerPattern   = regexp.MustCompile(`(?i)\b(?:to|between|and|from)\b|[-–]`)
	rangeBoundExpression = `((?:₹|rs\.?|inr)\s*)?(\d+(?:,\d+)*(?:\.\d+)?)\s*(lakh|lac|crore|thousand)?s?`

	amountRangePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)` + rangeBoundExpression + `\s*(?:to|[-–])\s*` + rangeBoundExpression),
		regexp.MustCompile(`(?i)between\s+` + rangeBoundExpression + `\s+and\s+` + rangeBoundExpression),
		regexp.MustCompile(`(?i)from\s+` + rangeBoundExpression + `\s+to\s+` + rangeBoundExpression),
	}

	wordToNumber = map[string]float64{
		"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
		"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
		"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
		"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18,
		"nineteen": 19, "twenty": 20, "thirty": 30, "forty": 40,
		"fifty": 50, "sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
	}

	suffixMultipliers = map[string]float64{
		"hundred":  multiplierHundred,
		"thousand": multiplierThousand,
		"lakh":     multiplierLakh,
		"lac":      multiplierLakh,
		"crore":    multiplierCrore,
	}
)

// AmountParser extracts monetary values from free text, handling Indian
// numbering (lakh/crore), word-numbers, ranges and currency symbols.
// Amounts are reported in INR.
type AmountParser struct{}

// NewAmountParser creates a new amount parser.
func NewAmountParser() *AmountParser {
	return &AmountParser{}
}

// ParseAmount extracts a monetary amount from text. Strategies are tried in
// order and the first success wins. The range strategy runs ahead of the
// single-value ones so "5 lakh to 10 lakh" resolves to the upper bound
// instead of the first figure; it only fires when the text carries a range
// marker. Returns (0, false) when nothing matches; absence of an amount is
// not an error.
func (parser *AmountParser) ParseAmount(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}

	text = strings.ToLower(strings.TrimSpace(text))

	strategies := []func(string) (float64, bool){
		parser.parseRangeAmount,
		parser.parseStructuredAmount,
		parser.parseWordAmount,
		parser.parseSuffixedAmount,
		parser.parsePlainAmount,
	}

	for _, strategy := range strategies {
		if amount, ok := strategy(text); ok {
			return amount, true
		}
	}

	return 0, false
}

// parseStructuredAmount matches currency-symbol amounts like "₹2,50,000" or
// "Rs. 50000".
func (parser *AmountParser) parseStructuredAmount(text string) (float64, bool) {
	match := rupeeAmountPattern.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}

	amount, err := parseGroupedNumber(match[1])
	if err != nil {
		return 0, false
	}

	// A suffix after a symbol amount still scales it ("Rs 5 lakh").
	if suffixed, ok := parser.parseSuffixedAmount(text); ok && suffixed > amount {
		return suffixed, true
	}

	return amount, true
}

// parseWordAmount matches word-number multipliers like "five lakh" or
// "twenty thousand".
func (parser *AmountParser) parseWordAmount(text string) (float64, bool) {
	for _, match := range wordAmountPattern.FindAllStringSubmatch(text, -1) {
		base, known := wordToNumber[match[1]]
		if !known {
			continue
		}
		multiplier := suffixMultipliers[strings.ToLower(match[2])]
		return base * multiplier, true
	}
	return 0, false
}

// parseRangeAmount matches amount ranges and keeps the maximum bound as the
// representative amount, treating the ceiling as the disclosed benefit.
func (parser *AmountParser) parseRangeAmount(text string) (float64, bool) {
	if !rangeMarkerPattern.MatchString(text) {
		return 0, false
	}

	for _, pattern := range amountRangePatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}

		lower, lowerErr := parseBoundWithSuffix(match[2], match[3])
		upper, upperErr := parseBoundWithSuffix(match[5], match[6])
		if lowerErr != nil || upperErr != nil {
			continue
		}

		// A digit pair with no currency marker or multiplier on either
		// bound that is shaped like an academic session ("2024-25",
		// "2024-2025") is a year mention, not an amount range.
		bare := match[1] == "" && match[3] == "" && match[4] == "" && match[6] == ""
		if bare && looksLikeYearSpan(lower, upper) {
			continue
		}

		if lower > upper {
			return lower, true
		}
		return upper, true
	}

	return 0, false
}

// parseSuffixedAmount matches digits followed by an Indian multiplier, like
// "5 lakh" or "1.5 crore". Crore is checked first so "1 crore" is not read
// as a lakh amount embedded in larger text.
func (parser *AmountParser) parseSuffixedAmount(text string) (float64, bool) {
	if match := croreAmountPattern.FindStringSubmatch(text); match != nil {
		if value, err := strconv.ParseFloat(match[1], 64); err == nil {
			return value * multiplierCrore, true
		}
	}
	if match := lakhAmountPattern.FindStringSubmatch(text); match != nil {
		if value, err := strconv.ParseFloat(match[1], 64); err == nil {
			return value * multiplierLakh, true
		}
	}
	if match := thousandPattern.FindStringSubmatch(text); match != nil {
		if value, err := strconv.ParseFloat(match[1], 64); err == nil {
			return value * multiplierThousand, true
		}
	}
	return 0, false
}

// parsePlainAmount is the last-resort digit-sequence fallback.
func (parser *AmountParser) parsePlainAmount(text string) (float64, bool) {
	match := plainNumericPattern.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}

	amount, err := parseGroupedNumber(match[1])
	if err != nil || amount == 0 {
		return 0, false
	}
	return amount, true
}

// ValidateAmount checks whether an amount is plausible for a scholarship.
// Amounts outside the sanity window are flagged, not silently accepted.
func (parser *AmountParser) ValidateAmount(amount float64) (bool, []string) {
	var issues []string

	if amount <= 0 {
		issues = append(issues, "Amount must be positive")
	}
	if amount > AmountSanityUpperBound {
		issues = append(issues, "Amount seems unrealistically high")
	}
	if amount > 0 && amount < AmountSanityLowerBound {
		issues = append(issues, "Amount seems unrealistically low")
	}

	return len(issues) == 0, issues
}

// FormatAmountIndian formats an amount in the Indian crore/lakh/thousand
// convention.
func (parser *AmountParser) FormatAmountIndian(amount float64) string {
	switch {
	case amount >= multiplierCrore:
		return fmt.Sprintf("₹%.2f crore", amount/multiplierCrore)
	case amount >= multiplierLakh:
		return fmt.Sprintf("₹%.2f lakh", amount/multiplierLakh)
	case amount >= multiplierThousand:
		return fmt.Sprintf("₹%.2f thousand", amount/multiplierThousand)
	default:
		return fmt.Sprintf("₹%.2f", amount)
	}
}

// AmountDetails carries a parsed amount with contextual classification.
type AmountDetails struct {
	Amount     float64 `json:"amount"`
	Found      bool    `json:"found"`
	Currency   string  `json:"currency"`
	Type       string  `json:"type"`
	Frequency  string  `json:"frequency"`
	Confidence float64 `json:"confidence"`
	RawText    string  `json:"raw_text"`
}

// ParseAmountDetails parses an amount and classifies its type and payout
// frequency from surrounding keywords.
func (parser *AmountParser) ParseAmountDetails(text string) AmountDetails {
	details := AmountDetails{Currency: "INR", Type: "unknown", RawText: text}
	if text == "" {
		return details
	}

	if amount, ok := parser.ParseAmount(text); ok {
		details.Amount = amount
		details.Found = true
		details.Confidence = 0.8
	}

	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "scholarship", "award", "grant"):
		details.Type = "scholarship"
	case containsAny(lower, "stipend", "monthly", "per month"):
		details.Type = "stipend"
	case containsAny(lower, "fee", "tuition", "cost"):
		details.Type = "fee"
	case containsAny(lower, "prize", "reward", "cash"):
		details.Type = "prize"
	}

	switch {
	case containsAny(lower, "monthly", "per month", "/month"):
		details.Frequency = "monthly"
	case containsAny(lower, "yearly", "per year", "/year", "annual"):
		details.Frequency = "yearly"
	case containsAny(lower, "one time", "lump sum", "single"):
		details.Frequency = "one_time"
	}

	return details
}

func parseGroupedNumber(raw string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
}

func looksLikeYearSpan(lower, upper float64) bool {
	if lower < 1900 || lower > 2100 {
		return false
	}
	return upper <= 99 || (upper >= 1900 && upper <= 2100)
}

func parseBoundWithSuffix(digits, suffix string) (float64, error) {
	value, err := parseGroupedNumber(digits)
	if err != nil {
		return 0, err
	}
	if suffix != "" {
		if multiplier, known := suffixMultipliers[strings.ToLower(suffix)]; known {
			value *= multiplier
		}
	}
	return value, nil
}

func containsAny(text string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}
