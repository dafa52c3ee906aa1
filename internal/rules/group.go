package rules

// EvaluateAll reports whether every file satisfies every pattern. The returned
// slice holds the files that failed, in input order. An empty file list
// matches.
func EvaluateAll(files, patterns []string, dot bool) (bool, []string, error) {
	failed, err := failing(files, patterns, dot)
	if err != nil {
		return false, nil, err
	}
	return len(failed) == 0, failed, nil
}

// EvaluateAny reports whether at least one file satisfies every pattern.
// "Any" quantifies over files, not patterns: a single file has to pass the
// whole list. The returned slice holds every file that failed, which can be
// non-empty even when the group matched.
func EvaluateAny(files, patterns []string, dot bool) (bool, []string, error) {
	failed, err := failing(files, patterns, dot)
	if err != nil {
		return false, nil, err
	}
	return len(failed) < len(files), failed, nil
}

// EvaluateGroup runs the "all" stage and then the "any" stage of a group.
// A failed "all" stage short-circuits. The non-matching set is the
// intersection of the sets of every stage that ran.
func EvaluateGroup(files []string, g Group, dot bool) (bool, []string, error) {
	matched := true
	nonMatching := files

	if g.All != nil {
		ok, failed, err := EvaluateAll(files, g.All, dot)
		if err != nil {
			return false, nil, err
		}
		nonMatching = intersect(nonMatching, failed)
		if !ok {
			return false, nonMatching, nil
		}
	}

	if g.Any != nil {
		ok, failed, err := EvaluateAny(files, g.Any, dot)
		if err != nil {
			return false, nil, err
		}
		matched = matched && ok
		nonMatching = intersect(nonMatching, failed)
	}

	return matched, nonMatching, nil
}

// failing returns the files not accepted by every pattern.
func failing(files, patterns []string, dot bool) ([]string, error) {
	matchers, err := compileAll(patterns, dot)
	if err != nil {
		return nil, err
	}
	failed := []string{}
	for _, f := range files {
		if !satisfiesAll(f, matchers) {
			failed = append(failed, f)
		}
	}
	return failed, nil
}

// intersect returns the distinct elements of a that are also in b, in the
// order they first appear in a.
func intersect(a, b []string) []string {
	in := make(map[string]bool, len(b))
	for _, s := range b {
		in[s] = true
	}
	out := []string{}
	seen := make(map[string]bool, len(a))
	for _, s := range a {
		if in[s] && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
