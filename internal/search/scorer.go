package search

import (
	"strings"

	"github.com/voluntra/opportunity-search/internal/models"
)

// Scoring weights. Title signals dominate, organization follows, free-text
// fields trail behind.
const (
	exactTitlePoints = 1000
	exactOrgPoints   = 800

	prefixTitlePoints = 500
	prefixOrgPoints   = 400

	containsTitlePoints    = 300
	containsOrgPoints      = 200
	containsDescPoints     = 100
	containsLocationPoints = 50
	containsCategoryPoints = 30

	wordTitlePoints    = 150
	wordOrgPoints      = 100
	wordDescPoints     = 50
	wordLocationPoints = 25
)

const (
	// Words with fewer runes than this never contribute word-level points.
	minWordLen = 2
	// Words with fewer runes than this are never fuzzy-matched.
	minFuzzyLen = 3
)

// fieldSet accumulates matched field names, first touch wins.
type fieldSet struct {
	names []string
	seen  map[string]bool
}

func (s *fieldSet) add(name string) {
	if s.seen == nil {
		s.seen = make(map[string]bool, 5)
	}
	if s.seen[name] {
		return
	}
	s.seen[name] = true
	s.names = append(s.names, name)
}

// scoreOpportunity rates one candidate against a normalized query. The query
// and queryWords must already be trimmed and lowercased by the caller.
// Points accumulate per rule even when a field already matched; the matched
// field set is deduplicated.
func scoreOpportunity(o models.Opportunity, query string, queryWords []string) (float64, []string) {
	title := strings.ToLower(o.Title)
	org := strings.ToLower(o.Organization)
	desc := strings.ToLower(o.Description)
	location := strings.ToLower(o.Location)
	category := strings.ToLower(o.Category)

	score := 0.0
	var matched fieldSet

	if title == query {
		score += exactTitlePoints
		matched.add("title")
	}
	if org == query {
		score += exactOrgPoints
		matched.add("organization")
	}

	if strings.HasPrefix(title, query) {
		score += prefixTitlePoints
		matched.add("title")
	}
	if strings.HasPrefix(org, query) {
		score += prefixOrgPoints
		matched.add("organization")
	}

	if strings.Contains(title, query) {
		score += containsTitlePoints
		matched.add("title")
	}
	if strings.Contains(org, query) {
		score += containsOrgPoints
		matched.add("organization")
	}
	if desc != "" && strings.Contains(desc, query) {
		score += containsDescPoints
		matched.add("description")
	}
	if location != "" && strings.Contains(location, query) {
		score += containsLocationPoints
		matched.add("location")
	}
	if category != "" && strings.Contains(category, query) {
		score += containsCategoryPoints
		matched.add("category")
	}

	for _, word := range queryWords {
		if len([]rune(word)) < minWordLen {
			continue
		}
		if strings.Contains(title, word) {
			score += wordTitlePoints
			matched.add("title")
		}
		if strings.Contains(org, word) {
			score += wordOrgPoints
			matched.add("organization")
		}
		if desc != "" && strings.Contains(desc, word) {
			score += wordDescPoints
			matched.add("description")
		}
		if location != "" && strings.Contains(location, word) {
			score += wordLocationPoints
			matched.add("location")
		}
	}

	for _, word := range queryWords {
		wordRunes := len([]rune(word))
		if wordRunes < minFuzzyLen {
			continue
		}
		threshold := wordRunes / 3

		for _, token := range strings.Fields(title) {
			d := Distance(word, token)
			if d > 0 && d <= threshold {
				score += float64(50 - d*10)
				matched.add("title")
			}
		}
		for _, token := range strings.Fields(org) {
			d := Distance(word, token)
			if d > 0 && d <= threshold {
				score += float64(30 - d*5)
				matched.add("organization")
			}
		}
	}

	return score, matched.names
}
