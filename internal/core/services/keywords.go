package services

import "strings"

// stopWords are tokens excluded from keyword extraction.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "may": {},
	"might": {}, "can": {}, "what": {}, "how": {}, "when": {}, "where": {},
	"why": {}, "who": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"i": {}, "you": {}, "he": {}, "she": {}, "it": {}, "we": {}, "they": {},
}

// isKeywordSeparator reports whether a rune splits keyword tokens.
func isKeywordSeparator(r rune) bool {
	switch r {
	case ' ', '\n', '\r', '\t', '.', ',', '!', '?', ';', ':', '(', ')', '[', ']', '{', '}':
		return true
	}
	return false
}

// extractKeywords lowercases text, splits it on whitespace and common
// punctuation, and drops short tokens and stop words.
func extractKeywords(text string) []string {
	fields := strings.FieldsFunc(text, isKeywordSeparator)

	keywords := make([]string, 0, len(fields))
	for _, word := range fields {
		if len(word) <= 2 {
			continue
		}
		lower := strings.ToLower(word)
		if _, stop := stopWords[lower]; stop {
			continue
		}
		keywords = append(keywords, lower)
	}
	return keywords
}
