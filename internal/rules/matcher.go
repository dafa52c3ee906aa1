package rules

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher is a compiled glob pattern.
// Patterns use doublestar syntax (** matches any depth) with '/' as separator.
type Matcher struct {
	pattern string
	glob    string
	negated bool
	dot     bool

	// segments are the '/'-separated parts of glob, used for the dot check.
	segments []string
}

// Compile parses a pattern into a Matcher. A leading '!' negates the pattern;
// repeated '!' toggle. When dot is false, wildcards do not match path segments
// that start with '.': each such segment must be matched by a pattern segment
// that spells the dot out, literally or inside a brace alternative.
func Compile(pattern string, dot bool) (*Matcher, error) {
	m := &Matcher{pattern: pattern, dot: dot}

	glob := pattern
	for strings.HasPrefix(glob, "!") {
		m.negated = !m.negated
		glob = glob[1:]
	}
	if !doublestar.ValidatePattern(glob) {
		return nil, fmt.Errorf("%w: %q", ErrBadPattern, pattern)
	}
	m.glob = glob
	m.segments = strings.Split(glob, "/")
	return m, nil
}

// Pattern returns the pattern the matcher was compiled from.
func (m *Matcher) Pattern() string {
	return m.pattern
}

// Negated reports whether the pattern started with '!'.
func (m *Matcher) Negated() bool {
	return m.negated
}

// Test reports whether path satisfies the pattern. For a negated pattern this
// is true when the glob body does not match.
func (m *Matcher) Test(path string) bool {
	return m.match(path) != m.negated
}

func (m *Matcher) match(path string) bool {
	if !doublestar.MatchUnvalidated(m.glob, path) {
		return false
	}
	if m.dot {
		return true
	}
	for _, seg := range strings.Split(path, "/") {
		if strings.HasPrefix(seg, ".") && !m.spellsDot(seg) {
			return false
		}
	}
	return true
}

// spellsDot reports whether some pattern segment matches the dot-leading path
// segment seg through a literal '.'. A pattern segment that still matches once
// the dot is replaced by another character reached it through a wildcard.
func (m *Matcher) spellsDot(seg string) bool {
	undotted := dotless + seg[1:]
	for _, p := range m.segments {
		if p == "**" {
			continue
		}
		if doublestar.MatchUnvalidated(p, seg) && !doublestar.MatchUnvalidated(p, undotted) {
			return true
		}
	}
	return false
}

// dotless stands in for a leading '.'; no literal pattern character matches it.
const dotless = "\x00"

// compileAll compiles every pattern, stopping at the first error.
func compileAll(patterns []string, dot bool) ([]*Matcher, error) {
	matchers := make([]*Matcher, 0, len(patterns))
	for _, p := range patterns {
		m, err := Compile(p, dot)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, m)
	}
	return matchers, nil
}

// satisfiesAll reports whether path is accepted by every matcher.
func satisfiesAll(path string, matchers []*Matcher) bool {
	for _, m := range matchers {
		if !m.Test(path) {
			return false
		}
	}
	return true
}
