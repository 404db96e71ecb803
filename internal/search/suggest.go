package search

import (
	"strings"

	"github.com/voluntra/opportunity-search/internal/models"
)

// DefaultSuggestionLimit caps autocomplete responses.
const DefaultSuggestionLimit = 5

// Per-source caps keep titles dominant in the suggestion mix.
const (
	suggestTitleCap    = 3
	suggestOrgCap      = 2
	suggestLocationCap = 2
)

// Suggest derives autocomplete suggestions for a partial query from the
// candidate set: matching titles first, then organizations, then locations,
// deduplicated case-insensitively in first-seen order. Queries shorter than
// two characters produce nothing.
func Suggest(candidates []models.Opportunity, partial string, limit int) []string {
	partial = strings.ToLower(strings.TrimSpace(partial))
	if len(partial) < minWordLen {
		return nil
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	seen := make(map[string]bool)
	suggestions := make([]string, 0, limit)

	appendMatches := func(pick func(models.Opportunity) string, sourceCap int) {
		count := 0
		for _, c := range candidates {
			if count >= sourceCap {
				return
			}
			value := strings.TrimSpace(pick(c))
			if value == "" {
				continue
			}
			key := strings.ToLower(value)
			if seen[key] || !strings.Contains(key, partial) {
				continue
			}
			seen[key] = true
			suggestions = append(suggestions, value)
			count++
		}
	}

	appendMatches(func(o models.Opportunity) string { return o.Title }, suggestTitleCap)
	appendMatches(func(o models.Opportunity) string { return o.Organization }, suggestOrgCap)
	appendMatches(func(o models.Opportunity) string { return o.Location }, suggestLocationCap)

	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions
}
