package skyqa

import (
	"regexp"
	"strings"
)

// Resolver maps a free-text question to one catalog name.
//
// The first name, in listing order, that occurs in the lower-cased question wins. When a name is a
// substring of another name the listing order decides which one is reported; there is no scoring.
type Resolver struct {
	// Fallback is tried when no listed name occurs in the question. It is a literal alternation of
	// the built-in names and only matters for questions the substring scan cannot see, so it is
	// normally nil for store-backed catalogs.
	Fallback *regexp.Regexp
}

// NewFallbackPattern builds a case-insensitive, word-bounded alternation over names.
func NewFallbackPattern(names []string) *regexp.Regexp {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = regexp.QuoteMeta(name)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}

// Resolve returns the canonical name referenced by question, as spelled in names.
// The boolean result is false when nothing matched.
func (r Resolver) Resolve(question string, names []string) (string, bool) {
	lower := strings.ToLower(question)
	for _, name := range names {
		if name == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(name)) {
			return name, true
		}
	}

	if r.Fallback == nil {
		return "", false
	}
	match := r.Fallback.FindString(question)
	if match == "" {
		return "", false
	}
	for _, name := range names {
		if strings.EqualFold(name, match) {
			return name, true
		}
	}
	return match, true
}
