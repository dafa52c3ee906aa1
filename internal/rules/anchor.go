package rules

import (
	"fmt"
	"strings"
)

// AnchorPrefix marks a pattern entry that references another label.
const AnchorPrefix = "&"

// RawTable is a parsed rule table whose patterns may still contain anchors.
type RawTable struct {
	Rules []Rule
}

// Resolve expands every "&label" entry of every "all" and "any" list into the
// referenced label's patterns, in place. Expansion is a single pass: a
// referenced label whose own patterns contain an anchor is rejected with
// ErrNestedAnchor instead of being expanded recursively.
func Resolve(raw *RawTable) (*Table, error) {
	lookup := make(map[string][]string, len(raw.Rules))
	for _, r := range raw.Rules {
		lookup[r.Label] = r.Patterns()
	}

	resolved := make([]Rule, 0, len(raw.Rules))
	for _, r := range raw.Rules {
		groups := make([]Group, 0, len(r.Groups))
		for _, g := range r.Groups {
			allOf, err := expandAnchors(g.All, lookup)
			if err != nil {
				return nil, fmt.Errorf("label %q: %w", r.Label, err)
			}
			anyOf, err := expandAnchors(g.Any, lookup)
			if err != nil {
				return nil, fmt.Errorf("label %q: %w", r.Label, err)
			}
			groups = append(groups, Group{All: allOf, Any: anyOf})
		}
		resolved = append(resolved, Rule{Label: r.Label, Groups: groups})
	}

	return NewTable(resolved...), nil
}

func expandAnchors(patterns []string, lookup map[string][]string) ([]string, error) {
	if patterns == nil {
		return nil, nil
	}

	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		name, ok := anchorName(p)
		if !ok {
			out = append(out, p)
			continue
		}
		ref, ok := lookup[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAnchor, p)
		}
		for _, rp := range ref {
			if _, nested := anchorName(rp); nested {
				return nil, fmt.Errorf("%w: %q references %q", ErrNestedAnchor, p, rp)
			}
		}
		out = append(out, ref...)
	}
	return out, nil
}

// anchorName returns the label an anchor entry refers to.
func anchorName(pattern string) (string, bool) {
	if !strings.HasPrefix(pattern, AnchorPrefix) {
		return "", false
	}
	return strings.TrimPrefix(pattern, AnchorPrefix), true
}
