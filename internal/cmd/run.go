package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/justrnr500/prlabeler/internal/action"
	"github.com/justrnr500/prlabeler/internal/config"
	"github.com/justrnr500/prlabeler/internal/gh"
	"github.com/justrnr500/prlabeler/internal/rules"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Label pull requests on GitHub",
	Long: `Evaluate the rule file against the files changed by one or more pull
requests and update their labels on GitHub.

Inputs are read from the GitHub Actions environment (INPUT_REPO-TOKEN,
INPUT_CONFIGURATION-PATH, INPUT_SYNC-LABELS, INPUT_DOT, INPUT_PR-NUMBER,
INPUT_NON-MATCHING-LABEL, GITHUB_REPOSITORY, GITHUB_EVENT_PATH) and from a
.env file in the repository root. Flags override both.

The new-labels and all-labels outputs are written to $GITHUB_OUTPUT.

Examples:
  labeler run
  labeler run --repo octo/widgets --pr 12 --pr 15 --sync-labels
  labeler run --pr 12 --dry-run --debug`,
	RunE: runRun,
}

var (
	runRulesPath        string
	runRepo             string
	runPRs              []int
	runSyncLabels       bool
	runDot              bool
	runNonMatchingLabel string
	runDryRun           bool
	runConcurrency      int
	runOutput           string
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runRulesPath, "config", "c", config.DefaultRulesPath, "Rule file path")
	runCmd.Flags().StringVar(&runRepo, "repo", "", "Repository as owner/name")
	runCmd.Flags().IntSliceVar(&runPRs, "pr", nil, "Pull request number (repeatable)")
	runCmd.Flags().BoolVar(&runSyncLabels, "sync-labels", false, "Remove configured labels that no longer match")
	runCmd.Flags().BoolVar(&runDot, "dot", true, "Let wildcards match dotfiles")
	runCmd.Flags().StringVar(&runNonMatchingLabel, "non-matching-label", "", "Label to apply when a file matches no rule")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Compute labels without writing them")
	runCmd.Flags().IntVar(&runConcurrency, "concurrency", config.DefaultConcurrency, "Pull requests processed at once")
	runCmd.Flags().StringVar(&runOutput, "output", "", "File to append step outputs to (default $GITHUB_OUTPUT)")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client, err := gh.New(ctx, cfg.Token, cfg.APIURL)
	if err != nil {
		return fmt.Errorf("create GitHub client: %w", err)
	}

	table, err := action.LoadRules(ctx, client, cfg.Owner, cfg.Repo, cfg.RulesPath, cfg.Ref, cfg.Dot)
	if err != nil {
		return err
	}

	runner := &action.Runner{
		Client: client,
		Owner:  cfg.Owner,
		Repo:   cfg.Repo,
		Table:  table,
		Options: rules.Options{
			Dot:              cfg.Dot,
			SyncLabels:       cfg.SyncLabels,
			NonMatchingLabel: cfg.NonMatchingLabel,
		},
		Concurrency: cfg.Concurrency,
		DryRun:      runDryRun,
		Commands:    action.NewCommands(cmd.OutOrStdout()),
	}

	results, err := runner.Run(ctx, cfg.PRNumbers)
	if err != nil {
		return err
	}
	return action.WriteOutputs(cfg.OutputPath, cmd.OutOrStdout(), results)
}

// loadRunConfig merges the .env file, the Actions environment and flags.
func loadRunConfig(cmd *cobra.Command) (*config.Config, error) {
	if cwd, err := os.Getwd(); err == nil {
		if root, err := config.FindRoot(cwd); err == nil {
			if err := config.LoadDotEnv(root); err != nil {
				return nil, err
			}
		}
	}

	cfg, err := config.FromEnv(os.Getenv)
	if err != nil {
		return nil, err
	}
	if err := applyRunFlags(cmd, cfg); err != nil {
		return nil, err
	}
	if err := cfg.ResolvePRNumbers(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("config") {
		cfg.RulesPath = runRulesPath
	}
	if flags.Changed("repo") {
		owner, name, err := config.SplitRepository(runRepo)
		if err != nil {
			return err
		}
		cfg.Owner, cfg.Repo = owner, name
	}
	if flags.Changed("pr") {
		cfg.PRNumbers = runPRs
	}
	if flags.Changed("sync-labels") {
		cfg.SyncLabels = runSyncLabels
	}
	if flags.Changed("dot") {
		cfg.Dot = runDot
	}
	if flags.Changed("non-matching-label") {
		cfg.NonMatchingLabel = runNonMatchingLabel
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = runConcurrency
	}
	if flags.Changed("output") {
		cfg.OutputPath = runOutput
	}
	return nil
}
