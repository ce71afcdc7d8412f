package fuzzy

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// LevenshteinDistance calculates the edit distance between two strings
// after lowercasing them and stripping accents
func LevenshteinDistance(s1, s2 string) int {
	r1 := []rune(normalizeString(s1))
	r2 := []rune(normalizeString(s2))
	m := len(r1)
	n := len(r2)

	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}

// Threshold is the typo tolerance for a query of the given length
func Threshold(query string) int {
	switch l := len([]rune(query)); {
	case l <= 3:
		return 1
	case l >= 8:
		return 3
	default:
		return 2
	}
}

// FuzzyMatch checks if query fuzzy-matches text within a given threshold
func FuzzyMatch(query, text string, threshold int) bool {
	query = normalizeString(query)
	text = normalizeString(text)

	if strings.Contains(text, query) {
		return true
	}

	for _, word := range strings.Fields(text) {
		if strings.HasPrefix(word, query) || LevenshteinDistance(query, word) <= threshold {
			return true
		}
	}

	// Whole-string distance for short names
	if len(text) < 50 {
		return LevenshteinDistance(query, text) <= threshold+len(query)/5
	}
	return false
}

// RelevanceScore scores how well a candidate name matches query. Higher is better.
func RelevanceScore(query, candidate string) float64 {
	query = normalizeString(query)
	text := normalizeString(candidate)
	if query == "" || text == "" {
		return 0
	}

	score := 0.0
	if strings.HasPrefix(text, query) {
		score += 120.0
	}
	if strings.Contains(text, query) {
		score += 100.0
		if containsWord(text, query) {
			score += 50.0
		}
		return score
	}

	for _, word := range strings.Fields(text) {
		dist := LevenshteinDistance(query, word)
		if dist <= 2 {
			score += 50.0 - float64(dist)*15
		}
		if strings.HasPrefix(word, query) {
			score += 40.0
		}
	}
	return score
}

// Suggest returns up to limit distinct candidates that fuzzy-match query, best first.
// Ties keep the input order.
func Suggest(query string, candidates []string, limit int) []string {
	if strings.TrimSpace(query) == "" || limit <= 0 {
		return nil
	}

	type scored struct {
		value string
		score float64
	}

	threshold := Threshold(query)
	seen := make(map[string]bool)
	var matches []scored
	for _, c := range candidates {
		key := normalizeString(c)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		if !FuzzyMatch(query, c, threshold) {
			continue
		}
		matches = append(matches, scored{value: c, score: RelevanceScore(query, c)})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].score > matches[j].score })

	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.value
	}
	return out
}

// Helper functions

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}

// normalizeString lowercases, strips accents and collapses whitespace
func normalizeString(s string) string {
	s = removeAccents(strings.ToLower(s))
	return strings.Join(strings.Fields(s), " ")
}

func containsWord(text, query string) bool {
	for _, word := range strings.Fields(text) {
		if word == query {
			return true
		}
	}
	return false
}

// removeAccents drops combining marks after canonical decomposition, so "José" matches "jose"
func removeAccents(s string) string {
	var result strings.Builder
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		result.WriteRune(r)
	}
	return result.String()
}
