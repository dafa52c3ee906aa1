package action

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/justrnr500/prlabeler/internal/gh"
	"github.com/justrnr500/prlabeler/internal/rules"
)

// LoadRules reads the rule file from disk when it exists, otherwise from the
// repository at ref. Every pattern is compiled before the table is returned.
func LoadRules(ctx context.Context, client gh.Client, owner, repo, path, ref string, dot bool) (*rules.Table, error) {
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		slog.Debug("loaded rules from disk", "path", path)
	case errors.Is(err, fs.ErrNotExist):
		slog.Debug("rules not on disk, fetching from repository", "path", path, "ref", ref)
		data, err = client.GetFileContent(ctx, owner, repo, path, ref)
		if err != nil {
			return nil, fmt.Errorf("fetch rules: %w", err)
		}
	default:
		return nil, fmt.Errorf("read rules: %w", err)
	}

	table, err := rules.Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := table.Validate(dot); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}
