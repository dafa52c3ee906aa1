package rules

import "fmt"

// EvaluateRule evaluates a label's groups. The label matches when any group
// matches. Every group is evaluated so that the non-matching set, the files
// no group accepted, is complete. A rule with no groups never matches and
// leaves every file non-matching.
func EvaluateRule(files []string, groups []Group, dot bool) (bool, []string, error) {
	matched := false
	nonMatching := intersect(files, files)

	for _, g := range groups {
		ok, failed, err := EvaluateGroup(files, g, dot)
		if err != nil {
			return false, nil, err
		}
		matched = matched || ok
		nonMatching = intersect(nonMatching, failed)
	}

	return matched, nonMatching, nil
}

// Decide evaluates a single rule into a Decision.
func Decide(files []string, r Rule, dot bool) (Decision, error) {
	matched, nonMatching, err := EvaluateRule(files, r.Groups, dot)
	if err != nil {
		return Decision{}, fmt.Errorf("label %q: %w", r.Label, err)
	}
	return Decision{Label: r.Label, Matched: matched, NonMatching: nonMatching}, nil
}
