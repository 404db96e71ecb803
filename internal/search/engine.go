// Package search is the in-memory ranking engine: it filters, scores,
// highlights, sorts, and paginates an already-fetched candidate list. All
// of it is pure synchronous computation; persistence and transport live
// elsewhere.
package search

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/voluntra/opportunity-search/internal/models"
)

// Sentinel category values that disable category filtering.
const (
	categoryAll    = "all"
	categoryNearMe = "near me"
)

// Engine runs the search pipeline. The clock is injectable so date-window
// filters can be tested against a fixed instant.
type Engine struct {
	now func() time.Time
}

// New returns an engine using the wall clock.
func New() *Engine {
	return &Engine{now: time.Now}
}

// Search applies the full pipeline to candidates: structured filters, then
// scoring and highlighting when a query is present, then sorting and
// pagination. The input slice is never mutated.
func (e *Engine) Search(candidates []models.Opportunity, opts models.SearchOptions) []models.SearchResult {
	now := e.now()

	filtered := make([]models.Opportunity, 0, len(candidates))
	for _, c := range candidates {
		if !passesCategory(c, opts.Category) {
			continue
		}
		if !passesDateRange(c, opts.EffectiveDateRange(), now) {
			continue
		}
		if opts.MaxDistanceKm != nil && (c.DistanceKm == nil || *c.DistanceKm > *opts.MaxDistanceKm) {
			continue
		}
		if opts.MinSpots != nil && c.SpotsAvailable < *opts.MinSpots {
			continue
		}
		if opts.VerifiedOnly != nil && c.Verified != *opts.VerifiedOnly {
			continue
		}
		filtered = append(filtered, c)
	}

	results := scoreStage(filtered, opts.Query)
	sortResults(results, opts.EffectiveSortBy())
	return paginate(results, opts.Offset, opts.Limit)
}

func passesCategory(o models.Opportunity, category string) bool {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" || category == categoryAll || category == categoryNearMe {
		return true
	}
	return strings.ToLower(o.Category) == category
}

func passesDateRange(o models.Opportunity, dateRange models.DateRange, now time.Time) bool {
	if dateRange == models.DateRangeAll {
		return true
	}

	effective := o.EffectiveDate()
	if effective.IsZero() {
		// Undated opportunities always pass range filters.
		return true
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch dateRange {
	case models.DateRangeToday:
		y1, m1, d1 := effective.Date()
		y2, m2, d2 := now.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	case models.DateRangeThisWeek:
		return !effective.Before(dayStart) && effective.Before(dayStart.AddDate(0, 0, 8))
	case models.DateRangeThisMonth:
		return !effective.Before(dayStart) && effective.Before(dayStart.AddDate(0, 1, 1))
	case models.DateRangeUpcoming:
		return !effective.Before(dayStart)
	default:
		return true
	}
}

// scoreStage turns surviving candidates into results. With a query, every
// candidate is scored and highlighted and zero-score results are dropped;
// without one, candidates pass through with score zero.
func scoreStage(candidates []models.Opportunity, rawQuery string) []models.SearchResult {
	query := strings.ToLower(strings.TrimSpace(rawQuery))

	if query == "" {
		results := make([]models.SearchResult, 0, len(candidates))
		for _, c := range candidates {
			results = append(results, models.SearchResult{
				Opportunity:   c,
				MatchedFields: []string{},
			})
		}
		return results
	}

	words := strings.Fields(query)
	results := make([]models.SearchResult, 0, len(candidates))
	for _, c := range candidates {
		score, matchedFields := scoreOpportunity(c, query, words)
		if score <= 0 {
			continue
		}
		if matchedFields == nil {
			matchedFields = []string{}
		}
		results = append(results, models.SearchResult{
			Opportunity:      c,
			RelevanceScore:   score,
			MatchedFields:    matchedFields,
			HighlightedTitle: Highlight(c.Title, query, words),
			HighlightedDesc:  Highlight(c.Description, query, words),
		})
	}
	return results
}

func sortResults(results []models.SearchResult, key models.SortKey) {
	switch key {
	case models.SortByDistance:
		sort.SliceStable(results, func(i, j int) bool {
			return distanceOrInf(results[i]) < distanceOrInf(results[j])
		})
	case models.SortByDate:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].EffectiveDate().Before(results[j].EffectiveDate())
		})
	case models.SortBySpots:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].SpotsAvailable > results[j].SpotsAvailable
		})
	default: // relevance
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].RelevanceScore > results[j].RelevanceScore
		})
	}
}

func distanceOrInf(r models.SearchResult) float64 {
	if r.DistanceKm == nil {
		return math.Inf(1)
	}
	return *r.DistanceKm
}

func paginate(results []models.SearchResult, offset, limit *int) []models.SearchResult {
	if offset == nil || limit == nil {
		return results
	}

	start := *offset
	if start < 0 {
		start = 0
	}
	if start >= len(results) {
		return []models.SearchResult{}
	}

	end := start + *limit
	if *limit < 0 || end > len(results) {
		end = len(results)
	}
	return results[start:end]
}
