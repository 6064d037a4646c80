package services

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/alwinjaison18/scholarship/models"
)

// DefaultSimilarityThreshold is the overall weighted similarity at or above
// which two records are treated as duplicates.
const DefaultSimilarityThreshold = 0.8

// KeepStrategy selects which record of a duplicate group survives.
type KeepStrategy string

const (
	KeepFirst KeepStrategy = "first"
	KeepLast  KeepStrategy = "last"
	KeepBest  KeepStrategy = "best"
)

// DuplicationResult carries the outcome of comparing two records.
type DuplicationResult struct {
	IsDuplicate     bool     `json:"is_duplicate"`
	SimilarityScore float64  `json:"similarity_score"`
	MatchingFields  []string `json:"matching_fields"`
	Confidence      float64  `json:"confidence"`
	Reasons         []string `json:"reasons"`
}

var dedupFieldWeights = map[string]float64{
	"title":       0.30,
	"url":         0.25,
	"description": 0.20,
	"amount":      0.10,
	"deadline":    0.05,
	"category":    0.05,
	"eligibility": 0.05,
}

// Generic scheme words carry no signal when comparing two scholarship
// titles, so they are stripped alongside ordinary stop words.
var dedupStopWords = map[string]struct{}{
	"the": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {}, "at": {},
	"to": {}, "for": {}, "of": {}, "with": {}, "by": {}, "a": {}, "an": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "may": {},
	"might": {}, "must": {}, "can": {}, "shall": {}, "this": {}, "that": {},
	"these": {}, "those": {}, "scholarship": {}, "award": {}, "grant": {},
	"fellowship": {},
}

var punctuationPattern = regexp.MustCompile(`[^\w\s]`)
var spacesPattern = regexp.MustCompile(`\s+`)

// DuplicationDetector detects duplicate scholarship records via weighted
// field similarity.
type DuplicationDetector struct {
	threshold float64
	logger    *logrus.Entry
}

// NewDuplicationDetector creates a detector with the default threshold.
func NewDuplicationDetector() *DuplicationDetector {
	return NewDuplicationDetectorWithThreshold(DefaultSimilarityThreshold)
}

// NewDuplicationDetectorWithThreshold creates a detector with a custom
// threshold.
func NewDuplicationDetectorWithThreshold(threshold float64) *DuplicationDetector {
	return &DuplicationDetector{
		threshold: threshold,
		logger:    logrus.WithField("service", "duplication_detector"),
	}
}

// AreDuplicates reports whether two records describe the same scholarship.
func (detector *DuplicationDetector) AreDuplicates(first, second *models.CandidateRecord) bool {
	return detector.DetectDuplication(first, second).IsDuplicate
}

// DetectDuplication compares two records field by field. Fields absent from
// either record are excluded from the weighted average rather than counted
// as disagreement.
func (detector *DuplicationDetector) DetectDuplication(first, second *models.CandidateRecord) DuplicationResult {
	if first == nil || second == nil {
		return DuplicationResult{Reasons: []string{"Missing scholarship data"}}
	}

	fieldSimilarities := make(map[string]float64)
	var matchingFields, reasons []string

	if first.ApplicationURL != "" && second.ApplicationURL != "" {
		if NormalizeURL(first.ApplicationURL) == NormalizeURL(second.ApplicationURL) {
			fieldSimilarities["url"] = 1.0
			matchingFields = append(matchingFields, "url")
			reasons = append(reasons, "Exact URL match")
		} else {
			fieldSimilarities["url"] = 0.0
		}
	}

	if first.Title != "" && second.Title != "" {
		similarity := textSimilarity(first.Title, second.Title)
		fieldSimilarities["title"] = similarity
		if similarity > 0.8 {
			matchingFields = append(matchingFields, "title")
			reasons = append(reasons, fmt.Sprintf("High title similarity: %.2f", similarity))
		}
	}

	if first.Description != "" && second.Description != "" {
		similarity := textSimilarity(first.Description, second.Description)
		fieldSimilarities["description"] = similarity
		if similarity > 0.7 {
			matchingFields = append(matchingFields, "description")
			reasons = append(reasons, fmt.Sprintf("High description similarity: %.2f", similarity))
		}
	}

	if first.Amount != nil && second.Amount != nil {
		similarity := compareAmounts(*first.Amount, *second.Amount)
		fieldSimilarities["amount"] = similarity
		if similarity > 0.9 {
			matchingFields = append(matchingFields, "amount")
			reasons = append(reasons, "Similar amounts")
		}
	}

	if first.Deadline != nil && second.Deadline != nil {
		similarity := compareDeadlines(first, second)
		fieldSimilarities["deadline"] = similarity
		if similarity > 0.8 {
			matchingFields = append(matchingFields, "deadline")
			reasons = append(reasons, "Similar deadlines")
		}
	}

	if first.Category != "" && second.Category != "" {
		similarity := textSimilarity(first.Category, second.Category)
		fieldSimilarities["category"] = similarity
		if similarity > 0.7 {
			matchingFields = append(matchingFields, "category")
			reasons = append(reasons, "Similar categories")
		}
	}

	firstEligibility := strings.Join(first.Eligibility, " ")
	secondEligibility := strings.Join(second.Eligibility, " ")
	if firstEligibility != "" && secondEligibility != "" {
		similarity := textSimilarity(firstEligibility, secondEligibility)
		fieldSimilarities["eligibility"] = similarity
		if similarity > 0.6 {
			matchingFields = append(matchingFields, "eligibility")
			reasons = append(reasons, "Similar eligibility criteria")
		}
	}

	overall := weightedSimilarity(fieldSimilarities)

	return DuplicationResult{
		IsDuplicate:     overall >= detector.threshold,
		SimilarityScore: overall,
		MatchingFields:  matchingFields,
		Confidence:      duplicationConfidence(fieldSimilarities, matchingFields),
		Reasons:         reasons,
	}
}

// DuplicatePair links two batch indexes the detector flagged as duplicates.
type DuplicatePair struct {
	First  int
	Second int
	Result DuplicationResult
}

// FindDuplicatePairs compares every pair in a batch.
func (detector *DuplicationDetector) FindDuplicatePairs(records []*models.CandidateRecord) []DuplicatePair {
	var pairs []DuplicatePair
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			if result := detector.DetectDuplication(records[i], records[j]); result.IsDuplicate {
				pairs = append(pairs, DuplicatePair{First: i, Second: j, Result: result})
			}
		}
	}
	return pairs
}

// GroupDuplicates partitions a batch into duplicate groups. Singleton groups
// are included, so every index appears exactly once and repeated calls yield
// the same partition.
func (detector *DuplicationDetector) GroupDuplicates(records []*models.CandidateRecord) [][]int {
	set := newDisjointSet(len(records))
	for _, pair := range detector.FindDuplicatePairs(records) {
		set.union(pair.First, pair.Second)
	}

	members := make(map[int][]int)
	for index := 0; index < len(records); index++ {
		root := set.find(index)
		members[root] = append(members[root], index)
	}

	roots := make([]int, 0, len(members))
	for root := range members {
		roots = append(roots, root)
	}
	sort.Ints(roots)

	groups := make([][]int, 0, len(members))
	for _, root := range roots {
		groups = append(groups, members[root])
	}
	return groups
}

// DeduplicationStats summarizes the shape of one batch.
type DeduplicationStats struct {
	Input      int `json:"input"`
	Survivors  int `json:"survivors"`
	Duplicates int `json:"duplicates"`
	Groups     int `json:"groups"`
}

// Stats reports how a batch would collapse without modifying it.
func (detector *DuplicationDetector) Stats(records []*models.CandidateRecord) DeduplicationStats {
	groups := detector.GroupDuplicates(records)
	stats := DeduplicationStats{Input: len(records), Groups: len(groups)}
	for _, group := range groups {
		stats.Survivors++
		stats.Duplicates += len(group) - 1
	}
	return stats
}

// Deduplicate collapses duplicate groups down to one record each, chosen by
// the given strategy. Returned records keep their original batch order.
func (detector *DuplicationDetector) Deduplicate(records []*models.CandidateRecord, strategy KeepStrategy) []*models.CandidateRecord {
	groups := detector.GroupDuplicates(records)

	keep := make(map[int]struct{}, len(groups))
	for _, group := range groups {
		keep[detector.selectSurvivor(records, group, strategy)] = struct{}{}
	}

	var surviving []*models.CandidateRecord
	for index, record := range records {
		if _, kept := keep[index]; kept {
			surviving = append(surviving, record)
		}
	}

	if removed := len(records) - len(surviving); removed > 0 {
		detector.logger.WithFields(logrus.Fields{
			"input":    len(records),
			"removed":  removed,
			"strategy": strategy,
		}).Info("Removed duplicate scholarships from batch")
	}

	return surviving
}

func (detector *DuplicationDetector) selectSurvivor(records []*models.CandidateRecord, group []int, strategy KeepStrategy) int {
	switch strategy {
	case KeepLast:
		return group[len(group)-1]
	case KeepBest:
		best := group[0]
		for _, index := range group[1:] {
			if records[index].QualityScore > records[best].QualityScore {
				best = index
			}
		}
		return best
	default:
		return group[0]
	}
}

// NormalizeURL canonicalizes a URL for duplicate comparison: lowercase,
// no www prefix, no query string or fragment, no trailing slash. Tracking
// parameters disappear with the query string.
func NormalizeURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(raw))
	}

	host := strings.TrimPrefix(parsed.Host, "www.")
	path := strings.TrimRight(parsed.Path, "/")

	return fmt.Sprintf("%s://%s%s", parsed.Scheme, host, path)
}

func normalizeComparisonText(text string) string {
	text = strings.ToLower(text)
	text = punctuationPattern.ReplaceAllString(text, " ")
	text = spacesPattern.ReplaceAllString(text, " ")

	words := strings.Fields(text)
	kept := words[:0]
	for _, word := range words {
		if _, stop := dedupStopWords[word]; !stop {
			kept = append(kept, word)
		}
	}
	return strings.Join(kept, " ")
}

// textSimilarity scores two strings in [0, 1] as twice the total length of
// their common matching blocks over their combined length.
func textSimilarity(first, second string) float64 {
	normalizedFirst := normalizeComparisonText(first)
	normalizedSecond := normalizeComparisonText(second)

	if normalizedFirst == "" || normalizedSecond == "" {
		return 0.0
	}
	if normalizedFirst == normalizedSecond {
		return 1.0
	}

	a := []rune(normalizedFirst)
	b := []rune(normalizedSecond)
	matched := matchingBlockLength(a, b)

	return 2.0 * float64(matched) / float64(len(a)+len(b))
}

// matchingBlockLength sums the longest common substring and recursively the
// matches on either side of it.
func matchingBlockLength(a, b []rune) int {
	aStart, bStart, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}

	total := size
	total += matchingBlockLength(a[:aStart], b[:bStart])
	total += matchingBlockLength(a[aStart+size:], b[bStart+size:])
	return total
}

func longestCommonSubstring(a, b []rune) (aStart, bStart, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}

	previous := make([]int, len(b)+1)
	current := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				current[j] = previous[j-1] + 1
				if current[j] > size {
					size = current[j]
					aStart = i - size
					bStart = j - size
				}
			} else {
				current[j] = 0
			}
		}
		previous, current = current, previous
	}
	return aStart, bStart, size
}

func compareAmounts(first, second float64) float64 {
	if first == 0 && second == 0 {
		return 1.0
	}
	if first == 0 || second == 0 {
		return 0.0
	}

	average := (first + second) / 2
	relativeDifference := math.Abs(first-second) / average

	return math.Max(0.0, 1.0-relativeDifference)
}

func compareDeadlines(first, second *models.CandidateRecord) float64 {
	differenceDays := int(math.Abs(first.Deadline.Sub(*second.Deadline).Hours()) / 24)

	switch {
	case differenceDays <= 3:
		return 1.0
	case differenceDays <= 7:
		return 0.8
	case differenceDays <= 14:
		return 0.6
	case differenceDays <= 30:
		return 0.4
	default:
		return 0.0
	}
}

func weightedSimilarity(fieldSimilarities map[string]float64) float64 {
	if len(fieldSimilarities) == 0 {
		return 0.0
	}

	var weightedSum, totalWeight float64
	for field, similarity := range fieldSimilarities {
		weight, known := dedupFieldWeights[field]
		if !known {
			weight = 0.1
		}
		weightedSum += similarity * weight
		totalWeight += weight
	}

	if totalWeight == 0 {
		return 0.0
	}
	return weightedSum / totalWeight
}

func duplicationConfidence(fieldSimilarities map[string]float64, matchingFields []string) float64 {
	if len(fieldSimilarities) == 0 {
		return 0.0
	}

	fieldCoverage := float64(len(fieldSimilarities)) / float64(len(dedupFieldWeights))

	criticalMatches := 0
	for _, field := range matchingFields {
		if field == "url" || field == "title" {
			criticalMatches++
		}
	}
	criticalBonus := float64(criticalMatches) / 2.0

	return math.Min(1.0, fieldCoverage*0.6+criticalBonus*0.4)
}

// disjointSet is a union-find structure with path compression and union by
// rank.
type disjointSet struct {
	parent []int
	rank   []int
}

func newDisjointSet(size int) *disjointSet {
	set := &disjointSet{
		parent: make([]int, size),
		rank:   make([]int, size),
	}
	for index := range set.parent {
		set.parent[index] = index
	}
	return set
}

func (set *disjointSet) find(element int) int {
	if set.parent[element] != element {
		set.parent[element] = set.find(set.parent[element])
	}
	return set.parent[element]
}

func (set *disjointSet) union(first, second int) {
	rootFirst := set.find(first)
	rootSecond := set.find(second)
	if rootFirst == rootSecond {
		return
	}

	if set.rank[rootFirst] < set.rank[rootSecond] {
		rootFirst, rootSecond = rootSecond, rootFirst
	}
	set.parent[rootSecond] = rootFirst
	if set.rank[rootFirst] == set.rank[rootSecond] {
		set.rank[rootFirst]++
	}
}
