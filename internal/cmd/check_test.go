package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/justrnr500/prlabeler/internal/config"
	"github.com/justrnr500/prlabeler/internal/rules"
)

func writeTestRules(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "labeler.yml")
	data := `
go: ['**/*.go', '!**/*_test.go']
docs:
  - all: ['docs/**']
  - '*.md'
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write rules: %v", err)
	}
	return path
}

func TestWriteCheckOutputText(t *testing.T) {
	out := &rules.Outcome{
		LabelSet: rules.LabelSet{Labels: []string{"bug", "go"}, Added: []string{"go"}},
		Unmatched: []string{"Makefile"},
		Decisions: []rules.Decision{
			{Label: "go", Matched: true, NonMatching: []string{"Makefile"}},
			{Label: "docs", Matched: false, NonMatching: []string{"a.go", "Makefile"}},
		},
	}

	var buf bytes.Buffer
	if err := writeCheckOutput(&buf, out, false); err != nil {
		t.Fatalf("writeCheckOutput: %v", err)
	}
	s := buf.String()

	for _, want := range []string{"LABEL", "go", "docs", "Labels:    bug, go", "Added:     go", "Unmatched: Makefile"} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q:\n%s", want, s)
		}
	}
	if strings.Contains(s, "Excess") {
		t.Errorf("output should not mention excess:\n%s", s)
	}
}

func TestWriteCheckOutputJSON(t *testing.T) {
	out := &rules.Outcome{
		LabelSet:  rules.LabelSet{Labels: []string{"go"}, Added: []string{"go"}, Changed: true},
		Unmatched: []string{},
	}

	var buf bytes.Buffer
	if err := writeCheckOutput(&buf, out, true); err != nil {
		t.Fatalf("writeCheckOutput: %v", err)
	}

	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if got["changed"] != true {
		t.Errorf("changed = %v", got["changed"])
	}
	if labels, _ := got["labels"].([]interface{}); len(labels) != 1 || labels[0] != "go" {
		t.Errorf("labels = %v", got["labels"])
	}
}

func TestReadFileList(t *testing.T) {
	files, err := readFileList("-", strings.NewReader("a.go\n\n  docs/b.md  \n"))
	if err != nil {
		t.Fatalf("readFileList: %v", err)
	}
	if !slices.Equal(files, []string{"a.go", "docs/b.md"}) {
		t.Errorf("files = %v", files)
	}

	path := filepath.Join(t.TempDir(), "files.txt")
	os.WriteFile(path, []byte("x.txt\ny.txt\n"), 0644)
	files, err = readFileList(path, nil)
	if err != nil {
		t.Fatalf("readFileList: %v", err)
	}
	if !slices.Equal(files, []string{"x.txt", "y.txt"}) {
		t.Errorf("files = %v", files)
	}

	if _, err := readFileList(filepath.Join(t.TempDir(), "missing"), nil); err == nil {
		t.Error("expected error for missing file list")
	}
}

func TestCheckCommand(t *testing.T) {
	path := writeTestRules(t)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetIn(strings.NewReader("README.md\n"))
	rootCmd.SetArgs([]string{"check", "--config", path, "--files-from", "-", "--labels", "bug", "--non-matching-label", "unowned", "--json", "cmd/main.go", "Makefile"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("check: %v", err)
	}

	var got rules.Outcome
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if want := []string{"bug", "go", "docs", "unowned"}; !slices.Equal(got.Labels, want) {
		t.Errorf("Labels = %v, want %v", got.Labels, want)
	}
	if !slices.Equal(got.Unmatched, []string{"Makefile"}) {
		t.Errorf("Unmatched = %v", got.Unmatched)
	}
}

func TestApplyRunFlags(t *testing.T) {
	t.Cleanup(func() {
		for _, name := range []string{"repo", "pr", "sync-labels", "dot"} {
			if f := runCmd.Flags().Lookup(name); f != nil {
				f.Changed = false
			}
		}
	})

	cfg := config.Default()
	cfg.Owner, cfg.Repo = "env", "repo"
	cfg.PRNumbers = []int{1}

	runCmd.Flags().Set("repo", "octo/widgets")
	runCmd.Flags().Set("pr", "7")
	runCmd.Flags().Set("pr", "8")
	runCmd.Flags().Set("sync-labels", "true")
	runCmd.Flags().Set("dot", "false")

	if err := applyRunFlags(runCmd, cfg); err != nil {
		t.Fatalf("applyRunFlags: %v", err)
	}
	if cfg.Owner != "octo" || cfg.Repo != "widgets" {
		t.Errorf("Owner/Repo = %s/%s", cfg.Owner, cfg.Repo)
	}
	if !slices.Equal(cfg.PRNumbers, []int{7, 8}) {
		t.Errorf("PRNumbers = %v", cfg.PRNumbers)
	}
	if !cfg.SyncLabels || cfg.Dot {
		t.Errorf("SyncLabels = %v, Dot = %v", cfg.SyncLabels, cfg.Dot)
	}
	if cfg.RulesPath != config.DefaultRulesPath {
		t.Errorf("RulesPath changed without flag: %q", cfg.RulesPath)
	}
}
