package models

import (
	"fmt"
	"strings"
)

// DateRange narrows results to a calendar window relative to "now".
type DateRange string

const (
	DateRangeAll       DateRange = "all"
	DateRangeToday     DateRange = "today"
	DateRangeThisWeek  DateRange = "thisWeek"
	DateRangeThisMonth DateRange = "thisMonth"
	DateRangeUpcoming  DateRange = "upcoming"
)

// SortKey selects the final ordering of the result list.
type SortKey string

const (
	SortByRelevance SortKey = "relevance"
	SortByDistance  SortKey = "distance"
	SortByDate      SortKey = "date"
	SortBySpots     SortKey = "spots"
)

// SearchOptions configures one search call. It doubles as the cache key, so
// two option values with identical fields must serialize identically.
type SearchOptions struct {
	Query         string    `json:"query"`
	Category      string    `json:"category,omitempty"`
	DateRange     DateRange `json:"date_range,omitempty"`
	MaxDistanceKm *float64  `json:"max_distance_km,omitempty"`
	MinSpots      *int      `json:"min_spots,omitempty"`
	VerifiedOnly  *bool     `json:"verified_only,omitempty"`
	SortBy        SortKey   `json:"sort_by,omitempty"`
	Offset        *int      `json:"offset,omitempty"`
	Limit         *int      `json:"limit,omitempty"`
}

// EffectiveDateRange defaults an unset range to "all".
func (o SearchOptions) EffectiveDateRange() DateRange {
	if o.DateRange == "" {
		return DateRangeAll
	}
	return o.DateRange
}

// EffectiveSortBy defaults an unset sort key to relevance.
func (o SearchOptions) EffectiveSortBy() SortKey {
	if o.SortBy == "" {
		return SortByRelevance
	}
	return o.SortBy
}

// CacheKey renders a canonical, field-order-independent key for this option
// set. Fields are written in a fixed sequence with explicit markers for
// unset optionals, so structurally equal options always share a key.
func (o SearchOptions) CacheKey() string {
	var b strings.Builder

	b.WriteString("q=")
	b.WriteString(strings.ToLower(strings.TrimSpace(o.Query)))
	b.WriteString("|cat=")
	b.WriteString(strings.ToLower(o.Category))
	b.WriteString("|range=")
	b.WriteString(string(o.EffectiveDateRange()))

	b.WriteString("|dist=")
	if o.MaxDistanceKm != nil {
		fmt.Fprintf(&b, "%g", *o.MaxDistanceKm)
	} else {
		b.WriteString("-")
	}

	b.WriteString("|spots=")
	if o.MinSpots != nil {
		fmt.Fprintf(&b, "%d", *o.MinSpots)
	} else {
		b.WriteString("-")
	}

	b.WriteString("|ver=")
	if o.VerifiedOnly != nil {
		fmt.Fprintf(&b, "%t", *o.VerifiedOnly)
	} else {
		b.WriteString("-")
	}

	b.WriteString("|sort=")
	b.WriteString(string(o.EffectiveSortBy()))

	b.WriteString("|page=")
	if o.Offset != nil && o.Limit != nil {
		fmt.Fprintf(&b, "%d:%d", *o.Offset, *o.Limit)
	} else {
		b.WriteString("-")
	}

	return b.String()
}
