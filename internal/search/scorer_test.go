package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voluntra/opportunity-search/internal/models"
)

func scoreFor(o models.Opportunity, rawQuery string) (float64, []string) {
	query := strings.ToLower(strings.TrimSpace(rawQuery))
	return scoreOpportunity(o, query, strings.Fields(query))
}

func TestScorerExactTitleBeatsSubstring(t *testing.T) {
	exact := models.Opportunity{Title: "Beach Cleanup", Organization: "Green Jamaica"}
	partial := models.Opportunity{Title: "Annual Beach Cleanup Drive", Organization: "Green Jamaica"}

	exactScore, exactFields := scoreFor(exact, "beach cleanup")
	partialScore, _ := scoreFor(partial, "beach cleanup")

	require.Contains(t, exactFields, "title")
	require.Greater(t, exactScore, partialScore)
	require.Greater(t, partialScore, 0.0)
}

func TestScorerOrganizationMatch(t *testing.T) {
	o := models.Opportunity{Title: "Beach Cleanup", Organization: "Green Jamaica"}

	score, fields := scoreFor(o, "green jamaica")
	require.Greater(t, score, 0.0)
	require.Contains(t, fields, "organization")
	require.NotContains(t, fields, "title")
}

func TestScorerAccumulatesAcrossFields(t *testing.T) {
	o := models.Opportunity{
		Title:        "Beach Cleanup",
		Organization: "Beach Guardians",
		Description:  "Join us for a beach day",
		Location:     "Negril Beach",
		Category:     "environment",
	}

	score, fields := scoreFor(o, "beach")
	require.Greater(t, score, 0.0)
	require.ElementsMatch(t, []string{"title", "organization", "description", "location"}, fields)
}

func TestScorerNoMatchScoresZero(t *testing.T) {
	o := models.Opportunity{Title: "Tutoring Program", Organization: "Edu Trust"}

	score, fields := scoreFor(o, "quantum")
	require.Equal(t, 0.0, score)
	require.Empty(t, fields)
}

func TestScorerFuzzyTypoTolerance(t *testing.T) {
	o := models.Opportunity{Title: "Beach Cleanup", Organization: "Green Jamaica"}

	// One edit away from "beach" within floor(5/3) = 1.
	score, fields := scoreFor(o, "beech")
	require.Greater(t, score, 0.0)
	require.Contains(t, fields, "title")

	// Far beyond the edit bound; no fuzzy contribution.
	score, fields = scoreFor(o, "xyz123")
	require.Equal(t, 0.0, score)
	require.Empty(t, fields)
}

func TestScorerShortWordsSkipped(t *testing.T) {
	o := models.Opportunity{Title: "A Big Beach Day", Organization: "Org"}

	// Single-character tokens contribute nothing at word level; the full
	// phrase still matches as a substring.
	score, _ := scoreFor(o, "a big")
	phraseOnly, _ := scoreFor(models.Opportunity{Title: "A Big Beach Day variant", Organization: "Org"}, "a big")
	require.Greater(t, score, 0.0)
	require.Greater(t, phraseOnly, 0.0)
}

func TestScorerCategorySubstring(t *testing.T) {
	o := models.Opportunity{Title: "Tree Planting", Organization: "Roots", Category: "environment"}

	score, fields := scoreFor(o, "environment")
	require.GreaterOrEqual(t, score, 30.0)
	require.Contains(t, fields, "category")
}

func TestScorerFuzzyThresholdCountsRunes(t *testing.T) {
	// "уборка" is 6 runes (12 bytes); the edit budget must be
	// floor(6/3) = 2 runes, not a byte-derived 4.
	inBudget := models.Opportunity{Title: "уборки", Organization: "Org"}
	score, fields := scoreFor(inBudget, "уборка")
	require.Greater(t, score, 0.0)
	require.Contains(t, fields, "title")

	// Three edits away; must not match.
	outOfBudget := models.Opportunity{Title: "убо", Organization: "Org"}
	score, fields = scoreFor(outOfBudget, "уборка")
	require.Equal(t, 0.0, score)
	require.Empty(t, fields)
}

func TestScorerWordGateCountsRunes(t *testing.T) {
	// Single-rune Cyrillic words are two bytes wide but still below the
	// two-character word gate.
	o := models.Opportunity{Title: "яма и сад", Organization: "Org"}

	score, fields := scoreFor(o, "с я")
	require.Equal(t, 0.0, score)
	require.Empty(t, fields)
}

func TestScorerMatchedFieldsDeduplicated(t *testing.T) {
	o := models.Opportunity{Title: "beach", Organization: "Green Jamaica"}

	// Exact, prefix, substring, word, and fuzzy rules all touch title;
	// the set records it once while each rule still adds points.
	score, fields := scoreFor(o, "beach")
	require.Equal(t, []string{"title"}, fields)
	require.GreaterOrEqual(t, score, float64(exactTitlePoints+prefixTitlePoints+containsTitlePoints+wordTitlePoints))
}
