// Package match compiles user keywords into a single case-insensitive
// matching predicate.
package match

import (
	"regexp"
	"strings"
)

// Matcher reports whether any of its keywords occurs in a piece of
// text. Keywords are matched as literal substrings, case-insensitive;
// no user-supplied pattern syntax is honored. Immutable once built.
type Matcher struct {
	re       *regexp.Regexp
	keywords []string
}

// New builds a matcher from a list of keywords. Empty and
// whitespace-only entries are discarded. A matcher with no usable
// keywords matches nothing, never everything.
func New(keywords []string) *Matcher {
	var cleaned []string
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			cleaned = append(cleaned, k)
		}
	}
	if len(cleaned) == 0 {
		return &Matcher{}
	}

	parts := make([]string, len(cleaned))
	for i, k := range cleaned {
		parts[i] = regexp.QuoteMeta(k)
	}

	return &Matcher{
		re:       regexp.MustCompile("(?i)(" + strings.Join(parts, "|") + ")"),
		keywords: cleaned,
	}
}

// Keywords returns the usable keywords the matcher was built from.
func (m *Matcher) Keywords() []string {
	return m.keywords
}

// Match reports whether any keyword occurs in text. The returned term
// is the keyword as it appears in the keyword list, not as found in
// the text, so alert subjects stay deterministic.
func (m *Matcher) Match(text string) (string, bool) {
	if m.re == nil {
		return "", false
	}

	found := m.re.FindString(text)
	if found == "" {
		return "", false
	}

	for _, k := range m.keywords {
		if strings.EqualFold(k, found) {
			return k, true
		}
	}
	// Unreachable: the alternation only contains the keywords.
	return found, true
}
