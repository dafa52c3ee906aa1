package rules

// Options controls a single evaluation.
type Options struct {
	// Dot lets wildcards match path segments that start with '.'.
	Dot bool
	// SyncLabels removes configured labels whose rule no longer matches.
	SyncLabels bool
	// NonMatchingLabel is applied when some file matched no rule.
	// Empty disables it.
	NonMatchingLabel string
	// MaxLabels caps the label set. Zero means MaxLabels.
	MaxLabels int
}

// Outcome is the result of evaluating a rule table against one change set.
type Outcome struct {
	LabelSet
	// Unmatched are the files no label's rule accepted.
	Unmatched []string `json:"unmatched"`
	// Decisions holds one entry per configured label, in table order.
	Decisions []Decision `json:"decisions"`
}

// Evaluate decides the label set for a change set. It has no side effects and
// is safe to call concurrently with the same Table.
func Evaluate(t *Table, files, preexisting []string, opts Options) (*Outcome, error) {
	decisions := make([]Decision, 0, t.Len())
	matched := make(map[string]bool, t.Len())
	for _, r := range t.rules {
		d, err := Decide(files, r, opts.Dot)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
		if d.Matched {
			matched[d.Label] = true
		}
	}

	unmatched := Unmatched(files, decisions)
	set := ComputeLabels(LabelInput{
		Preexisting:      preexisting,
		Configured:       t.Labels(),
		Matched:          matched,
		Unmatched:        unmatched,
		SyncLabels:       opts.SyncLabels,
		NonMatchingLabel: opts.NonMatchingLabel,
		MaxLabels:        opts.MaxLabels,
	})

	return &Outcome{
		LabelSet:  set,
		Unmatched: unmatched,
		Decisions: decisions,
	}, nil
}
