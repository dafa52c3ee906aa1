// Package config handles labeler configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/go-github/v71/github"
	"github.com/joho/godotenv"
)

const (
	// DefaultRulesPath is the rule file location relative to the repository root.
	DefaultRulesPath = ".github/labeler.yml"
	// EnvFile is the name of the optional dotenv file in the repository root.
	EnvFile = ".env"
	// DefaultConcurrency is how many pull requests are processed at once.
	DefaultConcurrency = 4
)

// Action inputs and runner environment variables.
const (
	EnvToken            = "INPUT_REPO-TOKEN"
	EnvRulesPath        = "INPUT_CONFIGURATION-PATH"
	EnvSyncLabels       = "INPUT_SYNC-LABELS"
	EnvDot              = "INPUT_DOT"
	EnvPRNumber         = "INPUT_PR-NUMBER"
	EnvNonMatchingLabel = "INPUT_NON-MATCHING-LABEL"

	EnvGitHubToken = "GITHUB_TOKEN"
	EnvRepository  = "GITHUB_REPOSITORY"
	EnvSHA         = "GITHUB_SHA"
	EnvOutput      = "GITHUB_OUTPUT"
	EnvAPIURL      = "GITHUB_API_URL"
	EnvEventPath   = "GITHUB_EVENT_PATH"
)

// Config represents the labeler configuration for one run.
type Config struct {
	Token     string
	RulesPath string

	Owner string
	Repo  string
	// Ref is the commit the rule file is fetched at when it is not on disk.
	Ref string

	PRNumbers        []int
	SyncLabels       bool
	Dot              bool
	NonMatchingLabel string

	// OutputPath is the file step outputs are appended to. Empty means stdout.
	OutputPath  string
	APIURL      string
	EventPath   string
	Concurrency int
}

// Default returns a default configuration.
func Default() *Config {
	return &Config{
		RulesPath:   DefaultRulesPath,
		Dot:         true,
		Concurrency: DefaultConcurrency,
	}
}

// LoadDotEnv loads root/.env into the process environment. Variables already
// set are not overridden. A missing file is not an error.
func LoadDotEnv(root string) error {
	path := filepath.Join(root, EnvFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// FromEnv builds a configuration from action inputs and the runner
// environment. getenv is usually os.Getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := Default()

	cfg.Token = firstNonEmpty(getenv(EnvToken), getenv(EnvGitHubToken))
	if p := getenv(EnvRulesPath); p != "" {
		cfg.RulesPath = p
	}
	cfg.NonMatchingLabel = strings.TrimSpace(getenv(EnvNonMatchingLabel))
	cfg.Ref = getenv(EnvSHA)
	cfg.OutputPath = getenv(EnvOutput)
	cfg.APIURL = getenv(EnvAPIURL)
	cfg.EventPath = getenv(EnvEventPath)

	var err error
	if cfg.SyncLabels, err = parseBool(getenv(EnvSyncLabels), false); err != nil {
		return nil, fmt.Errorf("%s: %w", EnvSyncLabels, err)
	}
	if cfg.Dot, err = parseBool(getenv(EnvDot), true); err != nil {
		return nil, fmt.Errorf("%s: %w", EnvDot, err)
	}

	if repo := getenv(EnvRepository); repo != "" {
		if cfg.Owner, cfg.Repo, err = SplitRepository(repo); err != nil {
			return nil, err
		}
	}

	if cfg.PRNumbers, err = ParsePRNumbers(getenv(EnvPRNumber)); err != nil {
		return nil, fmt.Errorf("%s: %w", EnvPRNumber, err)
	}

	return cfg, nil
}

// ResolvePRNumbers fills PRNumbers from the event payload when none were
// given explicitly.
func (c *Config) ResolvePRNumbers() error {
	if len(c.PRNumbers) > 0 {
		return nil
	}
	if c.EventPath == "" {
		return fmt.Errorf("no pull request number given and %s is not set", EnvEventPath)
	}
	n, err := PRNumberFromEvent(c.EventPath)
	if err != nil {
		return err
	}
	c.PRNumbers = []int{n}
	return nil
}

// Validate checks that a configuration can talk to GitHub.
func (c *Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("token not provided: set %s or %s", EnvToken, EnvGitHubToken)
	}
	if c.Owner == "" || c.Repo == "" {
		return fmt.Errorf("repository not set: use --repo owner/name or %s", EnvRepository)
	}
	if len(c.PRNumbers) == 0 {
		return fmt.Errorf("no pull request to label")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	return nil
}

// SplitRepository splits "owner/name".
func SplitRepository(s string) (string, string, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("invalid repository %q: want owner/name", s)
	}
	return owner, name, nil
}

// ParsePRNumbers parses pull request numbers separated by newlines, commas or
// spaces.
func ParsePRNumbers(s string) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r' || r == ' ' || r == '\t'
	})

	var out []int
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid pull request number %q", f)
		}
		out = append(out, n)
	}
	return out, nil
}

// PRNumberFromEvent reads the pull request number from a webhook event
// payload file.
func PRNumberFromEvent(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read event: %w", err)
	}

	var event github.PullRequestEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return 0, fmt.Errorf("parse event: %w", err)
	}

	n := event.GetNumber()
	if n == 0 {
		n = event.GetPullRequest().GetNumber()
	}
	if n == 0 {
		return 0, fmt.Errorf("event %s is not a pull request event", path)
	}
	return n, nil
}

// FindRoot searches for a git repository starting from the given path
// and walking up the directory tree.
func FindRoot(startPath string) (string, error) {
	absPath, err := filepath.Abs(startPath)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}

	current := absPath
	for {
		if _, err := os.Stat(filepath.Join(current, ".git")); err == nil {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			// Reached root
			return "", fmt.Errorf("not a git repository (or any parent): %s", startPath)
		}
		current = parent
	}
}

func parseBool(s string, def bool) (bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	return strconv.ParseBool(s)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
