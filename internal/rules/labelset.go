package rules

import "slices"

// LabelInput holds everything ComputeLabels needs.
type LabelInput struct {
	// Preexisting are the labels already on the pull request.
	Preexisting []string
	// Configured are the labels of the rule table, in table order.
	Configured []string
	// Matched holds the configured labels whose rule matched.
	Matched map[string]bool
	// Unmatched are the files no rule accepted.
	Unmatched []string

	SyncLabels       bool
	NonMatchingLabel string
	// MaxLabels caps the result. Zero means MaxLabels.
	MaxLabels int
}

// LabelSet is the computed label set for a pull request.
type LabelSet struct {
	// Labels is the final label list, preexisting labels first.
	Labels []string `json:"labels"`
	// Added are the labels in Labels that were not preexisting.
	Added []string `json:"added"`
	// Excess are the labels that did not fit under the cap.
	Excess []string `json:"excess,omitempty"`
	// Changed reports whether Labels differs from the preexisting labels.
	Changed bool `json:"changed"`
}

// ComputeLabels applies the matching results to the preexisting labels.
// Matched labels are added. Unmatched configured labels are removed only when
// SyncLabels is set. The non-matching label is added when some file matched
// no rule and removed otherwise, again only under SyncLabels.
func ComputeLabels(in LabelInput) LabelSet {
	set := newOrderedSet(in.Preexisting...)

	for _, label := range in.Configured {
		switch {
		case in.Matched[label]:
			set.add(label)
		case in.SyncLabels:
			set.remove(label)
		}
	}

	if in.NonMatchingLabel != "" {
		switch {
		case len(in.Unmatched) > 0:
			set.add(in.NonMatchingLabel)
		case in.SyncLabels:
			set.remove(in.NonMatchingLabel)
		}
	}

	limit := in.MaxLabels
	if limit <= 0 {
		limit = MaxLabels
	}

	all := set.items()
	out := LabelSet{Labels: all, Added: []string{}}
	if len(all) > limit {
		out.Labels = all[:limit:limit]
		out.Excess = all[limit:]
	}

	pre := newOrderedSet(in.Preexisting...)
	for _, label := range out.Labels {
		if !pre.has(label) {
			out.Added = append(out.Added, label)
		}
	}
	out.Changed = !slices.Equal(out.Labels, pre.items())
	return out
}

// orderedSet is a set of strings that remembers insertion order. A removed
// element that is added again goes to the end.
type orderedSet struct {
	order []string
	index map[string]int
}

func newOrderedSet(items ...string) *orderedSet {
	s := &orderedSet{index: make(map[string]int)}
	for _, it := range items {
		s.add(it)
	}
	return s
}

func (s *orderedSet) has(item string) bool {
	_, ok := s.index[item]
	return ok
}

func (s *orderedSet) add(item string) {
	if s.has(item) {
		return
	}
	s.index[item] = len(s.order)
	s.order = append(s.order, item)
}

func (s *orderedSet) remove(item string) {
	i, ok := s.index[item]
	if !ok {
		return
	}
	s.order = append(s.order[:i], s.order[i+1:]...)
	delete(s.index, item)
	for j := i; j < len(s.order); j++ {
		s.index[s.order[j]] = j
	}
}

func (s *orderedSet) items() []string {
	return append([]string{}, s.order...)
}
