// Package qc implements the quality controller: eight independent criteria
// scored 0-100, a weighted overall score, and a PASS / WARNING / BLOCKED
// status with structured issues and recommendations.
package qc

import (
	"strings"
	"unicode"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// TermMatcher finds occurrences of a fixed term set in text using an
// Aho-Corasick automaton, so large lexicons stay a single pass over the
// input.
type TermMatcher struct {
	matcher *ahocorasick.Matcher
	terms   []string
}

// NewTermMatcher builds a matcher over the given terms. Terms are normalized
// to lowercase; empty terms are dropped.
func NewTermMatcher(terms []string) *TermMatcher {
	normalized := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			normalized = append(normalized, t)
		}
	}
	m := &TermMatcher{terms: normalized}
	if len(normalized) > 0 {
		m.matcher = ahocorasick.NewStringMatcher(normalized)
	}
	return m
}

// Match returns the distinct terms present in text.
func (m *TermMatcher) Match(text string) []string {
	if m.matcher == nil {
		return nil
	}
	hits := m.matcher.Match([]byte(normalizeText(text)))
	seen := make(map[string]bool, len(hits))
	var found []string
	for _, idx := range hits {
		if idx < 0 || idx >= len(m.terms) {
			continue
		}
		term := m.terms[idx]
		if !seen[term] {
			seen[term] = true
			found = append(found, term)
		}
	}
	return found
}

// Count returns the number of distinct terms present in text.
func (m *TermMatcher) Count(text string) int {
	return len(m.Match(text))
}

// normalizeText lowercases and replaces non-alphanumeric runes with spaces,
// preserving word boundaries for the matcher.
func normalizeText(text string) string {
	text = strings.ToLower(text)

	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
		} else {
			result.WriteByte(' ')
		}
	}
	return result.String()
}
