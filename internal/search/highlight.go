package search

import (
	"regexp"
	"strings"
)

const highlightMarker = "**"

// Highlight wraps every occurrence of the query phrase, then of each query
// word, in marker pairs. The word pass runs over the already-marked text,
// so words inside a marked phrase may pick up nested markers; renderers
// rely on that output shape, so it is kept as-is.
func Highlight(text, query string, queryWords []string) string {
	if text == "" || strings.TrimSpace(query) == "" {
		return text
	}

	out := wrapMatches(text, query)
	for _, word := range queryWords {
		if len([]rune(word)) < minWordLen {
			continue
		}
		out = wrapMatches(out, word)
	}
	return out
}

func wrapMatches(text, term string) string {
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(term))
	if err != nil {
		return text
	}
	return re.ReplaceAllString(text, highlightMarker+"$0"+highlightMarker)
}
