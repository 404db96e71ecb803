package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/voluntra/opportunity-search/internal/models"
)

func TestCacheKeyStableForEqualOptions(t *testing.T) {
	dist := 10.0
	spots := 2
	verified := true

	a := models.SearchOptions{
		Query:         "Beach ",
		Category:      "Environment",
		DateRange:     models.DateRangeThisWeek,
		MaxDistanceKm: &dist,
		MinSpots:      &spots,
		VerifiedOnly:  &verified,
		SortBy:        models.SortByDistance,
	}

	distB := 10.0
	spotsB := 2
	verifiedB := true
	b := models.SearchOptions{
		Query:         "beach",
		Category:      "environment",
		DateRange:     models.DateRangeThisWeek,
		MaxDistanceKm: &distB,
		MinSpots:      &spotsB,
		VerifiedOnly:  &verifiedB,
		SortBy:        models.SortByDistance,
	}

	require.Equal(t, a.CacheKey(), b.CacheKey())
}

func TestCacheKeyDistinguishesFields(t *testing.T) {
	base := models.SearchOptions{Query: "beach"}

	spots := 1
	withSpots := models.SearchOptions{Query: "beach", MinSpots: &spots}
	require.NotEqual(t, base.CacheKey(), withSpots.CacheKey())

	sorted := models.SearchOptions{Query: "beach", SortBy: models.SortBySpots}
	require.NotEqual(t, base.CacheKey(), sorted.CacheKey())

	ranged := models.SearchOptions{Query: "beach", DateRange: models.DateRangeToday}
	require.NotEqual(t, base.CacheKey(), ranged.CacheKey())
}

func TestCacheKeyDefaultsMatchExplicitDefaults(t *testing.T) {
	implicit := models.SearchOptions{Query: "beach"}
	explicit := models.SearchOptions{
		Query:     "beach",
		DateRange: models.DateRangeAll,
		SortBy:    models.SortByRelevance,
	}
	require.Equal(t, implicit.CacheKey(), explicit.CacheKey())
}

func TestEffectiveDateFallbackOrder(t *testing.T) {
	date := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC)

	both := models.Opportunity{Date: &date, EndDate: &end}
	require.Equal(t, end, both.EffectiveDate())

	dateOnly := models.Opportunity{Date: &date}
	require.Equal(t, date, dateOnly.EffectiveDate())

	require.True(t, models.Opportunity{}.EffectiveDate().IsZero())
}
