// Package query implements the read path: relevance scoring, the
// aggregation pipeline producing viewer-relativized pages, and feed
// candidate selection.
package query

import (
	"strings"
	"unicode"
)

// stopWords carry no discriminative value and would bias scores toward
// generic terms, so they are dropped before scoring. Lower-case only;
// input is lower-cased first, keeping scoring locale-insensitive.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "but": {}, "by": {}, "for": {}, "from": {}, "how": {},
	"i": {}, "in": {}, "is": {}, "it": {}, "of": {}, "on": {},
	"or": {}, "that": {}, "the": {}, "this": {}, "to": {}, "was": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "who": {},
	"will": {}, "with": {}, "you": {}, "your": {},
}

// NormalizeQuery lower-cases, whitespace-splits, and de-duplicates the
// free-text query, discarding stop-words. The result is the distinct
// term set used for scoring.
func NormalizeQuery(q string) []string {
	seen := make(map[string]struct{})
	terms := []string{}
	for _, w := range strings.Fields(strings.ToLower(q)) {
		if _, stop := stopWords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		terms = append(terms, w)
	}
	return terms
}

// Score ranks one item against normalized query terms. Title matches
// weigh double so a title hit outranks a description-only hit:
//
//	score = 2*distinct title matches + distinct secondary matches
//
// Scoring is deterministic; zero is a valid score and exclusion of
// zero-score items is the caller's policy, not the scorer's.
func Score(title, secondary string, terms []string) int {
	if len(terms) == 0 {
		return 0
	}
	titleWords := tokenSet(title)
	secondaryWords := tokenSet(secondary)

	score := 0
	for _, term := range terms {
		if _, ok := titleWords[term]; ok {
			score += 2
		}
		if _, ok := secondaryWords[term]; ok {
			score++
		}
	}
	return score
}

func tokenSet(s string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
