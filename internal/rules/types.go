// Package rules evaluates changed file paths against a label rule table.
//
// A rule table maps each label to an ordered list of pattern groups. A group
// has an optional "all" and an optional "any" pattern list. Both lists test a
// single file against every pattern in the list: "all" requires every file to
// pass, "any" requires at least one file to pass. A label matches when any of
// its groups match.
//
// Everything in this package is pure: no I/O, no shared mutable state.
package rules

import "fmt"

// MaxLabels is the maximum number of labels a pull request can carry.
const MaxLabels = 100

// Group is one {all, any} unit of a label rule.
// A nil slice means the list is absent; an empty non-nil slice is present.
type Group struct {
	All []string `json:"all,omitempty" yaml:"all,omitempty"`
	Any []string `json:"any,omitempty" yaml:"any,omitempty"`
}

// Rule is the ordered list of groups configured for a label.
type Rule struct {
	Label  string  `json:"label"`
	Groups []Group `json:"groups"`
}

// Patterns returns every pattern of the rule in order: each group's "all"
// entries followed by its "any" entries.
func (r Rule) Patterns() []string {
	var out []string
	for _, g := range r.Groups {
		out = append(out, g.All...)
		out = append(out, g.Any...)
	}
	return out
}

// Table is a resolved, read-only rule table. Labels keep configuration order.
type Table struct {
	rules []Rule
	index map[string]int
}

// NewTable builds a Table from rules. Later duplicates replace earlier ones
// in place.
func NewTable(rules ...Rule) *Table {
	t := &Table{index: make(map[string]int, len(rules))}
	for _, r := range rules {
		if i, ok := t.index[r.Label]; ok {
			t.rules[i] = r
			continue
		}
		t.index[r.Label] = len(t.rules)
		t.rules = append(t.rules, r)
	}
	return t
}

// Labels returns the configured labels in order.
func (t *Table) Labels() []string {
	out := make([]string, len(t.rules))
	for i, r := range t.rules {
		out[i] = r.Label
	}
	return out
}

// Rule returns the rule for a label.
func (t *Table) Rule(label string) (Rule, bool) {
	i, ok := t.index[label]
	if !ok {
		return Rule{}, false
	}
	return t.rules[i], true
}

// Len returns the number of labels.
func (t *Table) Len() int {
	return len(t.rules)
}

// Validate compiles every pattern so glob syntax errors surface before any
// evaluation.
func (t *Table) Validate(dot bool) error {
	for _, r := range t.rules {
		if _, err := compileAll(r.Patterns(), dot); err != nil {
			return fmt.Errorf("label %q: %w", r.Label, err)
		}
	}
	return nil
}

// Decision is the outcome of evaluating one label.
type Decision struct {
	Label       string   `json:"label"`
	Matched     bool     `json:"matched"`
	NonMatching []string `json:"non_matching"`
}
