package core

import "strings"

// MatchesQuery reports whether a transaction matches a free-text search.
// The match is a case-insensitive substring test against the transaction
// name, note, category name, and direction value ("income" matches INCOME).
// An empty query matches nothing: search is opt-in, not a full listing.
//
// The repository applies the same rule in SQL; this function is the
// reference implementation used for suggestion merging and tests.
func MatchesQuery(name, note, category string, direction Direction, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return false
	}
	for _, field := range []string{name, note, category, string(direction)} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}
