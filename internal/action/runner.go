// Package action labels pull requests on GitHub from a rule table.
package action

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/justrnr500/prlabeler/internal/gh"
	"github.com/justrnr500/prlabeler/internal/rules"
)

// Output names.
const (
	OutputNewLabels = "new-labels"
	OutputAllLabels = "all-labels"
)

// Runner evaluates and labels pull requests of one repository.
type Runner struct {
	Client  gh.Client
	Owner   string
	Repo    string
	Table   *rules.Table
	Options rules.Options

	// Concurrency bounds how many pull requests are processed at once.
	Concurrency int
	// DryRun computes labels without writing them.
	DryRun bool
	// Commands receives warnings. Nil writes to stdout.
	Commands *Commands
}

// Result is the outcome for one pull request.
type Result struct {
	Number  int            `json:"number"`
	Files   []string       `json:"files"`
	Outcome *rules.Outcome `json:"outcome"`
	// Applied reports whether the label set was written.
	Applied bool `json:"applied"`
	// Forbidden reports a write refused for lack of permission.
	Forbidden bool `json:"forbidden,omitempty"`
}

// Run labels every pull request in numbers and returns the results in the
// same order. The first error cancels the remaining work.
func (r *Runner) Run(ctx context.Context, numbers []int) ([]Result, error) {
	results := make([]Result, len(numbers))
	if r.Commands == nil {
		r.Commands = NewCommands(os.Stdout)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.Concurrency, 1))
	for i, n := range numbers {
		g.Go(func() error {
			res, err := r.label(ctx, n)
			if err != nil {
				return err
			}
			results[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) label(ctx context.Context, number int) (*Result, error) {
	log := slog.With("pr", number)

	pr, err := r.Client.GetPullRequest(ctx, r.Owner, r.Repo, number)
	if err != nil {
		return nil, err
	}
	files, err := r.Client.ListFiles(ctx, r.Owner, r.Repo, number)
	if err != nil {
		return nil, err
	}
	log.Debug("fetched pull request", "title", pr.Title, "draft", pr.Draft, "labels", pr.Labels, "files", len(files))

	out, err := rules.Evaluate(r.Table, files, pr.Labels, r.Options)
	if err != nil {
		return nil, fmt.Errorf("pull request #%d: %w", number, err)
	}
	for _, d := range out.Decisions {
		log.Debug("rule evaluated", "label", d.Label, "matched", d.Matched, "non_matching", len(d.NonMatching))
	}

	res := &Result{Number: number, Files: files, Outcome: out}

	switch {
	case !out.Changed:
		log.Info("labels unchanged", "labels", out.Labels)
	case r.DryRun:
		r.Commands.Notice(fmt.Sprintf("Dry run: #%d would be labeled %s", number, strings.Join(out.Labels, ", ")))
	default:
		err := r.Client.ReplaceLabels(ctx, r.Owner, r.Repo, number, out.Labels)
		switch {
		case errors.Is(err, gh.ErrForbidden):
			res.Forbidden = true
			r.Commands.Warning(fmt.Sprintf("The token lacks permission to label pull request #%d. "+
				"Grant 'pull-requests: write' to the workflow. Details: %v", number, err))
		case err != nil:
			return nil, err
		default:
			res.Applied = true
			log.Info("labels set", "labels", out.Labels, "added", out.Added)
		}
	}

	if len(out.Excess) > 0 {
		limit := r.Options.MaxLabels
		if limit <= 0 {
			limit = rules.MaxLabels
		}
		r.Commands.Warning(fmt.Sprintf("Maximum of %d labels allowed. Excess labels on #%d: %s",
			limit, number, strings.Join(out.Excess, ", ")))
	}
	if len(out.Unmatched) > 0 {
		log.Info("files matched no rule", "files", out.Unmatched)
	}
	return res, nil
}

// Outputs returns the new-labels and all-labels step outputs. Labels from
// several pull requests are merged in first-seen order.
func Outputs(results []Result) [][2]string {
	var added, all []string
	seenAdded, seenAll := map[string]bool{}, map[string]bool{}
	for _, res := range results {
		if res.Outcome == nil {
			continue
		}
		for _, l := range res.Outcome.Added {
			if !seenAdded[l] {
				seenAdded[l] = true
				added = append(added, l)
			}
		}
		for _, l := range res.Outcome.Labels {
			if !seenAll[l] {
				seenAll[l] = true
				all = append(all, l)
			}
		}
	}
	return [][2]string{
		{OutputNewLabels, strings.Join(added, ",")},
		{OutputAllLabels, strings.Join(all, ",")},
	}
}

// WriteOutputs writes the step outputs for results.
func WriteOutputs(path string, fallback io.Writer, results []Result) error {
	return SetOutputs(path, fallback, Outputs(results))
}
