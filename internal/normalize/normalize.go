// Package normalize cleans raw opportunity submissions into the canonical
// shape the search engine can consume defensively.
package normalize

import (
	"crypto/sha1"
	"encoding/hex"
	"html"
	"regexp"
	"strings"
	"time"
)

var (
	whitespace = regexp.MustCompile(`\s+`)
	htmlTags   = regexp.MustCompile(`<[^>]*>`)
)

// knownCategories is the closed set of category tags the platform uses.
var knownCategories = map[string]string{
	"environment": "environment",
	"education":   "education",
	"health":      "health",
	"community":   "community",
	"animals":     "animals",
	"arts":        "arts",
	"sports":      "sports",
	"disaster":    "disaster",
	"other":       "other",
}

// CleanText strips HTML tags and entities and squeezes whitespace.
func CleanText(input string) string {
	if input == "" {
		return ""
	}
	out := htmlTags.ReplaceAllString(input, " ")
	out = html.UnescapeString(out)
	out = whitespace.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// Category maps a raw tag onto the canonical category set, defaulting to
// "other" for anything unrecognized.
func Category(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := knownCategories[key]; ok {
		return canonical
	}
	return "other"
}

// Fingerprint hashes the stable submission fields into a deterministic ID.
func Fingerprint(title, organization string, date time.Time) string {
	h := sha1.Sum([]byte(strings.ToLower(title) + "|" + strings.ToLower(organization) + "|" + date.UTC().Format(time.RFC3339)))
	return hex.EncodeToString(h[:])
}

// ParseDate tries the timestamp layouts seen across submission sources.
// The zero time signals "unparseable".
func ParseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}

	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// Spots clamps a raw spot count to a non-negative value.
func Spots(raw int) int {
	if raw < 0 {
		return 0
	}
	return raw
}
