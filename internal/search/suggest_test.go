package search_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voluntra/opportunity-search/internal/models"
	"github.com/voluntra/opportunity-search/internal/search"
)

func suggestFixtures() []models.Opportunity {
	return []models.Opportunity{
		{Title: "Beach Cleanup", Organization: "Green Jamaica", Location: "Negril Beach"},
		{Title: "Beach Games Day", Organization: "Beachside Trust", Location: "Hellshire Beach"},
		{Title: "Tutoring Program", Organization: "Edu Trust", Location: "Kingston"},
		{Title: "Beach Yoga", Organization: "Wellness JA", Location: "Montego Bay"},
		{Title: "Beach Patrol", Organization: "Coast Watch", Location: "Ocho Rios"},
	}
}

func TestSuggestShortQueryReturnsNothing(t *testing.T) {
	require.Empty(t, search.Suggest(suggestFixtures(), "", 5))
	require.Empty(t, search.Suggest(suggestFixtures(), "b", 5))
	require.Empty(t, search.Suggest(suggestFixtures(), "  b  ", 5))
}

func TestSuggestTitlesFirstThenOrgsThenLocations(t *testing.T) {
	got := search.Suggest(suggestFixtures(), "beach", 10)

	// Three titles (cap), one organization, two locations.
	require.Equal(t, []string{
		"Beach Cleanup",
		"Beach Games Day",
		"Beach Yoga",
		"Beachside Trust",
		"Negril Beach",
		"Hellshire Beach",
	}, got)
}

func TestSuggestHonorsLimit(t *testing.T) {
	got := search.Suggest(suggestFixtures(), "beach", 2)
	require.Equal(t, []string{"Beach Cleanup", "Beach Games Day"}, got)

	// Non-positive limit falls back to the default of five.
	got = search.Suggest(suggestFixtures(), "beach", 0)
	require.Len(t, got, 5)
}

func TestSuggestDeduplicatesCaseInsensitively(t *testing.T) {
	candidates := []models.Opportunity{
		{Title: "Beach Cleanup", Organization: "beach cleanup", Location: "BEACH CLEANUP"},
		{Title: "beach cleanup", Organization: "Harbour Watch"},
	}

	got := search.Suggest(candidates, "beach", 5)
	require.Equal(t, []string{"Beach Cleanup"}, got)
}

func TestSuggestCaseInsensitiveContains(t *testing.T) {
	got := search.Suggest(suggestFixtures(), "TUTOR", 5)
	require.Equal(t, []string{"Tutoring Program"}, got)
}
