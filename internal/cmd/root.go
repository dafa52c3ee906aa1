// Package cmd provides the CLI commands for the labeler.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/justrnr500/prlabeler/internal/logging"
)

// Version information set via ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "labeler",
	Short: "Label pull requests by the files they change",
	Long: `Labeler matches the files changed by a pull request against a YAML rule
table and applies the labels whose rules match.

Rules map a label to glob patterns:

  docs:
    - any: ['docs/**']
    - any: ['*.md']
  source:
    - all: ['src/**']
      any: ['**/*.go', '!**/*_test.go']

A list of patterns is one group: a single file must satisfy every pattern in
it. Put alternatives in separate groups.

Run it from a GitHub Actions workflow with 'labeler run', or try a rule file
locally with 'labeler check'.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Configure(os.Stderr, debug)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{printf "labeler %s\ncommit: %s\nbuilt: %s\n" .Version "` + Commit + `" "` + BuildDate + `"}}`)
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}
