package parsers

import "strings"

// Classification tables for Indian scholarship listings. Rules are ordered
// slices, not maps, so the first matching label always wins.

type keywordRule struct {
	label    string
	keywords []string
}

var categoryRules = []keywordRule{
	{"merit", []string{"merit", "toppers", "academic excellence", "outstanding"}},
	{"need-based", []string{"need based", "financial aid", "economically weaker", "poor"}},
	{"minority", []string{"minority", "muslim", "christian", "sikh", "buddhist", "jain"}},
	{"women", []string{"women", "girl", "female", "lady", "mother"}},
	{"disabled", []string{"disabled", "handicapped", "divyang", "differently abled"}},
	{"sc", []string{"scheduled caste", "dalit", " sc "}},
	{"st", []string{"scheduled tribe", "tribal", " st "}},
	{"obc", []string{"obc", "other backward class", "backward"}},
	{"sports", []string{"sports", "athlete", "games", "physical education"}},
	{"arts", []string{"arts", "cultural", "music", "dance", "painting"}},
	{"science", []string{"science", "research", "scientific", "innovation"}},
	{"technology", []string{"technology", "technical", "engineering", "it "}},
	{"medical", []string{"medical", "medicine", "healthcare", "doctor", "nurse"}},
	{"engineering", []string{"engineering", "engineer"}},
	{"law", []string{"law", "legal", "advocate", "lawyer"}},
	{"management", []string{"management", "mba", "business", "commerce"}},
	{"agriculture", []string{"agriculture", "farming", "agricultural"}},
	{"international", []string{"international", "foreign", "abroad", "overseas"}},
}

var educationLevelRules = []keywordRule{
	{"pre-matric", []string{"pre matric", "class 9", "class 10", "9th", "10th"}},
	{"post-matric", []string{"post matric", "class 11", "class 12", "11th", "12th"}},
	{"graduation", []string{"graduation", "bachelor", "bsc", "bcom", "btech", "undergraduate"}},
	{"post-graduation", []string{"post graduation", "masters", "msc", "mcom", "mba", "mtech", "postgraduate"}},
	{"doctorate", []string{"doctorate", "phd", "doctoral", "research"}},
	{"diploma", []string{"diploma", "polytechnic"}},
	{"certificate", []string{"certificate", "certification"}},
	{"professional", []string{"professional", "chartered accountant", "company secretary", "medical", "law"}},
	{"vocational", []string{"vocational", "skill", "training", "iti"}},
}

var indianStates = []string{
	"Andhra Pradesh", "Arunachal Pradesh", "Assam", "Bihar", "Chhattisgarh",
	"Goa", "Gujarat", "Haryana", "Himachal Pradesh", "Jharkhand", "Karnataka",
	"Kerala", "Madhya Pradesh", "Maharashtra", "Manipur", "Meghalaya", "Mizoram",
	"Nagaland", "Odisha", "Punjab", "Rajasthan", "Sikkim", "Tamil Nadu",
	"Telangana", "Tripura", "Uttar Pradesh", "Uttarakhand", "West Bengal",
	"Andaman and Nicobar Islands", "Chandigarh", "Dadra and Nagar Haveli and Daman and Diu",
	"Delhi", "Jammu and Kashmir", "Ladakh", "Lakshadweep", "Puducherry",
}

var stateAbbreviations = map[string]string{
	"up": "Uttar Pradesh",
	"mp": "Madhya Pradesh",
	"hp": "Himachal Pradesh",
	"ap": "Andhra Pradesh",
	"tn": "Tamil Nadu",
	"wb": "West Bengal",
	"rj": "Rajasthan",
	"gj": "Gujarat",
	"mh": "Maharashtra",
	"ka": "Karnataka",
	"kl": "Kerala",
	"od": "Odisha",
	"jh": "Jharkhand",
	"hr": "Haryana",
	"pb": "Punjab",
	"br": "Bihar",
	"uk": "Uttarakhand",
}

var tagKeywords = []string{
	"scholarship", "fellowship", "grant", "award", "stipend",
	"merit", "need", "minority", "women", "disabled", "sports",
	"arts", "science", "technology", "medical", "engineering",
	"government", "private", "international", "research",
}

var institutionTypes = []string{
	"university", "college", "school", "institute", "iit", "nit", "iiit", "aiims",
}

// DetermineCategory classifies a listing by the first category whose keyword
// appears in the title or description. Defaults to "general".
func DetermineCategory(title, description string) string {
	text := " " + strings.ToLower(title+" "+description) + " "
	for _, rule := range categoryRules {
		if containsAny(text, rule.keywords...) {
			return rule.label
		}
	}
	return "general"
}

// DetermineEducationLevel classifies the education level of a listing.
// Defaults to "all-levels".
func DetermineEducationLevel(title, description string, eligibility []string) string {
	text := strings.ToLower(title + " " + description + " " + strings.Join(eligibility, " "))
	for _, rule := range educationLevelRules {
		if containsAny(text, rule.keywords...) {
			return rule.label
		}
	}
	return "all-levels"
}

// DetermineState finds the Indian state or union territory a listing is
// scoped to, falling back to common abbreviations and then "All India".
func DetermineState(title, description string, eligibility []string) string {
	text := strings.ToLower(title + " " + description + " " + strings.Join(eligibility, " "))

	for _, state := range indianStates {
		if strings.Contains(text, strings.ToLower(state)) {
			return state
		}
	}

	for _, word := range strings.Fields(text) {
		if state, ok := stateAbbreviations[strings.Trim(word, ".,()")]; ok {
			return state
		}
	}

	return "All India"
}

// GenerateTags derives search tags from listing text. Tags are deduplicated
// and returned in discovery order.
func GenerateTags(title, description string, eligibility []string) []string {
	text := strings.ToLower(title + " " + description + " " + strings.Join(eligibility, " "))

	seen := make(map[string]struct{})
	var tags []string
	appendTag := func(tag string) {
		if _, dup := seen[tag]; dup {
			return
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	for _, keyword := range tagKeywords {
		if strings.Contains(text, keyword) {
			appendTag(keyword)
		}
	}
	for _, institution := range institutionTypes {
		if strings.Contains(text, institution) {
			appendTag(institution)
		}
	}

	return tags
}
