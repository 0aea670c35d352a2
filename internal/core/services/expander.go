package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/askme-cli/internal/core/domain"
	"github.com/custodia-labs/askme-cli/internal/logger"
)

// Expansion weights applied multiplicatively to similarity scores.
const (
	weightOriginal   float32 = 1.0
	weightBroader    float32 = 0.8
	weightSynonym    float32 = 0.7
	weightNarrower   float32 = 0.6
	weightContextual float32 = 0.5
)

// maxNarrowerKeywords bounds how many single-term queries a vague
// question spawns.
const maxNarrowerKeywords = 3

// vaguePatterns detect questions too unspecific to match well on their
// own. Only vague queries receive broader and narrower expansions.
var vaguePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(what|how|why|when|where|who)\b.*\b(about|is|are|do|does|did)\b`),
	regexp.MustCompile(`(?i)\b(tell me|explain|describe|overview|summary)\b`),
	regexp.MustCompile(`(?i)\b(everything|all|general|basic|main)\b`),
}

// synonymTable maps common query terms to replacements that widen
// recall without changing intent.
var synonymTable = map[string][]string{
	"help":        {"assist", "support", "aid"},
	"problem":     {"issue", "trouble", "difficulty"},
	"information": {"data", "details", "facts"},
	"explain":     {"describe", "clarify", "elaborate"},
}

// contextualTerms are appended to every query as low-weight variants
// that surface introductory material.
var contextualTerms = []string{"introduction", "overview", "basics", "fundamentals"}

// Expander derives weighted query variants from a user question to
// improve recall on vague queries.
type Expander struct{}

// NewExpander creates a query expander.
func NewExpander() *Expander {
	return &Expander{}
}

// Expand returns the original query plus zero or more weighted
// variants. The original is always first, at weight 1.0.
func (e *Expander) Expand(query string) []domain.ExpandedQuery {
	expanded := []domain.ExpandedQuery{{
		Query:  query,
		Type:   domain.QueryOriginal,
		Weight: weightOriginal,
		Reason: "Original query",
	}}

	if e.isVague(query) {
		logger.Debug("Vague query detected: %q", query)
		expanded = append(expanded, e.broaderQueries(query)...)
		expanded = append(expanded, e.narrowerQueries(query)...)
	}

	expanded = append(expanded, e.synonymQueries(query)...)
	expanded = append(expanded, e.contextualQueries(query)...)

	logger.Debug("Expanded %q into %d queries", query, len(expanded))
	return expanded
}

// isVague reports whether a query matches any vagueness pattern.
func (e *Expander) isVague(query string) bool {
	for _, pattern := range vaguePatterns {
		if pattern.MatchString(query) {
			return true
		}
	}
	return false
}

// broaderQueries rewrites how-to and definition phrasings into wider
// topical queries.
func (e *Expander) broaderQueries(query string) []domain.ExpandedQuery {
	var broader []domain.ExpandedQuery

	if containsFold(query, "how to") {
		broader = append(broader, domain.ExpandedQuery{
			Query:  replaceFold(query, "how to", "information about"),
			Type:   domain.QueryBroader,
			Weight: weightBroader,
			Reason: "Broader context for how-to question",
		})
	}

	if containsFold(query, "what is") {
		broader = append(broader, domain.ExpandedQuery{
			Query:  replaceFold(query, "what is", "about"),
			Type:   domain.QueryBroader,
			Weight: weightBroader,
			Reason: "Broader context for definition question",
		})
	}

	return broader
}

// narrowerQueries turns the top extracted keywords into standalone
// single-term queries.
func (e *Expander) narrowerQueries(query string) []domain.ExpandedQuery {
	keywords := extractKeywords(query)
	if len(keywords) > maxNarrowerKeywords {
		keywords = keywords[:maxNarrowerKeywords]
	}

	narrower := make([]domain.ExpandedQuery, 0, len(keywords))
	for _, keyword := range keywords {
		narrower = append(narrower, domain.ExpandedQuery{
			Query:  keyword,
			Type:   domain.QueryNarrower,
			Weight: weightNarrower,
			Reason: fmt.Sprintf("Specific focus on key term: %s", keyword),
		})
	}
	return narrower
}

// synonymQueries substitutes each matched table term with each of its
// replacements, one variant per replacement.
func (e *Expander) synonymQueries(query string) []domain.ExpandedQuery {
	var synonyms []domain.ExpandedQuery

	for term, replacements := range synonymTable {
		if !containsFold(query, term) {
			continue
		}
		for _, replacement := range replacements {
			synonyms = append(synonyms, domain.ExpandedQuery{
				Query:  replaceFold(query, term, replacement),
				Type:   domain.QuerySynonym,
				Weight: weightSynonym,
				Reason: fmt.Sprintf("Synonym replacement: %s -> %s", term, replacement),
			})
		}
	}

	return synonyms
}

// contextualQueries appends each generic term to the original query.
// Applied unconditionally, not gated by vagueness.
func (e *Expander) contextualQueries(query string) []domain.ExpandedQuery {
	contextual := make([]domain.ExpandedQuery, 0, len(contextualTerms))
	for _, term := range contextualTerms {
		contextual = append(contextual, domain.ExpandedQuery{
			Query:  fmt.Sprintf("%s %s", query, term),
			Type:   domain.QueryContextual,
			Weight: weightContextual,
			Reason: fmt.Sprintf("Contextual expansion with: %s", term),
		})
	}
	return contextual
}

// containsFold reports whether s contains substr, case-insensitively.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// replaceFold replaces every case-insensitive occurrence of old in s
// with new, preserving the surrounding text's original casing.
func replaceFold(s, old, new string) string {
	if old == "" {
		return s
	}

	var b strings.Builder
	lower := strings.ToLower(s)
	oldLower := strings.ToLower(old)

	for {
		i := strings.Index(lower, oldLower)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		b.WriteString(new)
		s = s[i+len(old):]
		lower = lower[i+len(oldLower):]
	}
}
