package models

import "time"

// Opportunity represents the canonical volunteering opportunity stored in
// Elasticsearch. Optional fields use pointers so that "absent" is
// distinguishable from a zero value.
type Opportunity struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Organization   string     `json:"organization"`
	Location       string     `json:"location,omitempty"`
	Category       string     `json:"category"`
	Verified       bool       `json:"verified"`
	SpotsAvailable int        `json:"spots_available"`
	SpotsTotal     int        `json:"spots_total"`
	DistanceKm     *float64   `json:"distance_km,omitempty"`
	Date           *time.Time `json:"date,omitempty"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	Source         string     `json:"source,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// EffectiveDate picks the single date used for range filtering and date
// sorting: end date when present, otherwise the plain date, otherwise the
// zero time.
func (o Opportunity) EffectiveDate() time.Time {
	if o.EndDate != nil {
		return *o.EndDate
	}
	if o.Date != nil {
		return *o.Date
	}
	return time.Time{}
}

// SearchResult is an opportunity annotated by the ranking engine.
type SearchResult struct {
	Opportunity
	RelevanceScore   float64  `json:"relevance_score"`
	MatchedFields    []string `json:"matched_fields"`
	HighlightedTitle string   `json:"highlighted_title,omitempty"`
	HighlightedDesc  string   `json:"highlighted_description,omitempty"`
}

// CacheEntry is one persisted result set keyed by canonical search options.
type CacheEntry struct {
	Query     string         `json:"query"`
	Results   []SearchResult `json:"results"`
	Timestamp time.Time      `json:"timestamp"`
	Options   SearchOptions  `json:"options"`
}
