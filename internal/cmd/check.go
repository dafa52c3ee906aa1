package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/justrnr500/prlabeler/internal/config"
	"github.com/justrnr500/prlabeler/internal/rules"
)

var checkCmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Evaluate a rule file against a list of files",
	Long: `Evaluate the rule file against changed file paths without talking to GitHub.

Files come from the arguments and from --files-from (one path per line,
"-" for stdin). Existing labels given with --labels are treated as the
labels already on the pull request.

Examples:
  labeler check docs/index.md cmd/main.go
  git diff --name-only main | labeler check --files-from -
  labeler check --config rules.yml --labels bug,docs --sync-labels --json a.go`,
	RunE: runCheck,
}

var (
	checkRulesPath        string
	checkFilesFrom        string
	checkLabels           []string
	checkSyncLabels       bool
	checkDot              bool
	checkNonMatchingLabel string
	checkJSON             bool
)

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVarP(&checkRulesPath, "config", "c", "", "Rule file path (default <repo root>/"+config.DefaultRulesPath+")")
	checkCmd.Flags().StringVar(&checkFilesFrom, "files-from", "", "Read file paths from a file, - for stdin")
	checkCmd.Flags().StringSliceVar(&checkLabels, "labels", nil, "Labels already on the pull request")
	checkCmd.Flags().BoolVar(&checkSyncLabels, "sync-labels", false, "Remove configured labels that no longer match")
	checkCmd.Flags().BoolVar(&checkDot, "dot", true, "Let wildcards match dotfiles")
	checkCmd.Flags().StringVar(&checkNonMatchingLabel, "non-matching-label", "", "Label to apply when a file matches no rule")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Output as JSON")
}

func runCheck(cmd *cobra.Command, args []string) error {
	path, err := checkRulesFile()
	if err != nil {
		return err
	}

	table, err := rules.LoadFile(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := table.Validate(checkDot); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	files := append([]string{}, args...)
	if checkFilesFrom != "" {
		more, err := readFileList(checkFilesFrom, cmd.InOrStdin())
		if err != nil {
			return err
		}
		files = append(files, more...)
	}

	out, err := rules.Evaluate(table, files, checkLabels, rules.Options{
		Dot:              checkDot,
		SyncLabels:       checkSyncLabels,
		NonMatchingLabel: checkNonMatchingLabel,
	})
	if err != nil {
		return err
	}

	return writeCheckOutput(cmd.OutOrStdout(), out, checkJSON)
}

// checkRulesFile returns --config, or the default rule file of the enclosing
// repository.
func checkRulesFile() (string, error) {
	if checkRulesPath != "" {
		return checkRulesPath, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	root, err := config.FindRoot(cwd)
	if err != nil {
		return config.DefaultRulesPath, nil
	}
	return filepath.Join(root, config.DefaultRulesPath), nil
}

// readFileList reads one path per line, skipping blank lines.
func readFileList(name string, stdin io.Reader) ([]string, error) {
	r := stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, fmt.Errorf("open file list: %w", err)
		}
		defer f.Close()
		r = f
	}

	var files []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			files = append(files, filepath.ToSlash(line))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read file list: %w", err)
	}
	return files, nil
}

func writeCheckOutput(w io.Writer, out *rules.Outcome, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LABEL\tMATCHED\tNON-MATCHING")
	fmt.Fprintln(tw, "─────\t───────\t────────────")
	for _, d := range out.Decisions {
		fmt.Fprintf(tw, "%s\t%v\t%d\n", d.Label, d.Matched, len(d.NonMatching))
	}
	tw.Flush()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Labels:    %s\n", formatList(out.Labels))
	fmt.Fprintf(w, "Added:     %s\n", formatList(out.Added))
	if len(out.Excess) > 0 {
		fmt.Fprintf(w, "Excess:    %s\n", formatList(out.Excess))
	}
	if len(out.Unmatched) > 0 {
		fmt.Fprintf(w, "Unmatched: %s\n", formatList(out.Unmatched))
	}
	return nil
}

// formatList formats a list for display
func formatList(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
