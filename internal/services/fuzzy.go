package services

import (
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// Match is the best fuzzy match for a query among candidate names.
type Match struct {
	Query string `json:"query"`
	Name  string `json:"name"`
	Score int    `json:"score"`
	Index int    `json:"-"`
}

// ExtractOne returns the choice with the highest WeightedRatio against query.
// Ties keep the earliest choice. ok is false only when choices is empty.
func ExtractOne(query string, choices []string) (m Match, ok bool) {
	if len(choices) == 0 {
		return Match{Query: query}, false
	}
	best, err := fuzzy.ExtractOne(query, choices)
	if err != nil {
		return Match{Query: query}, false
	}
	m = Match{Query: query, Name: best.Match, Score: best.Score, Index: -1}
	for i, c := range choices {
		if c == best.Match {
			m.Index = i
			break
		}
	}
	return m, true
}

// WeightedRatio scores two strings 0-100. Both are lowercased, stripped of
// non-ASCII characters and punctuation before comparing.
func WeightedRatio(a, b string) int {
	return fuzzy.WRatio(a, b)
}
