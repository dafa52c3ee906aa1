// Package gh talks to the GitHub REST API on behalf of the labeler.
package gh

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v71/github"
	"golang.org/x/oauth2"
)

// PerPage is the page size used when listing pull request files.
const PerPage = 100

// ErrForbidden is returned when the token may not perform a write.
var ErrForbidden = errors.New("forbidden")

// PullRequest is the pull request data the labeler needs.
type PullRequest struct {
	Number int
	Title  string
	Draft  bool
	Labels []string
}

// Client is the subset of the GitHub API used by the labeler.
type Client interface {
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error)
	ListFiles(ctx context.Context, owner, repo string, number int) ([]string, error)
	ReplaceLabels(ctx context.Context, owner, repo string, number int, labels []string) error
	GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error)
}

// API implements Client with go-github.
type API struct {
	client *github.Client
}

// New creates a client authenticated with token. A non-empty baseURL points
// the client at a GitHub Enterprise Server API.
func New(ctx context.Context, token, baseURL string) (*API, error) {
	if token == "" {
		return nil, fmt.Errorf("GitHub token not provided")
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := github.NewClient(oauth2.NewClient(ctx, ts))

	if baseURL != "" && !strings.HasPrefix(baseURL, "https://api.github.com") {
		var err error
		client, err = client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("configure API URL %s: %w", baseURL, err)
		}
	}
	return &API{client: client}, nil
}

// NewFromClient wraps an existing go-github client.
func NewFromClient(client *github.Client) *API {
	return &API{client: client}
}

func (a *API) GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error) {
	pr, _, err := a.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("get pull request #%d: %w", number, err)
	}

	out := &PullRequest{
		Number: pr.GetNumber(),
		Title:  pr.GetTitle(),
		Draft:  pr.GetDraft(),
	}
	for _, l := range pr.Labels {
		out.Labels = append(out.Labels, l.GetName())
	}
	return out, nil
}

// ListFiles returns every file changed by a pull request, following
// pagination.
func (a *API) ListFiles(ctx context.Context, owner, repo string, number int) ([]string, error) {
	opts := &github.ListOptions{PerPage: PerPage}
	var files []string
	for {
		page, resp, err := a.client.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("list files of pull request #%d: %w", number, err)
		}
		for _, f := range page {
			files = append(files, f.GetFilename())
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return files, nil
}

// ReplaceLabels sets the labels of a pull request. A 403 response is reported
// as ErrForbidden.
func (a *API) ReplaceLabels(ctx context.Context, owner, repo string, number int, labels []string) error {
	_, _, err := a.client.Issues.ReplaceLabelsForIssue(ctx, owner, repo, number, labels)
	if err != nil {
		if isForbidden(err) {
			return fmt.Errorf("set labels on #%d: %w: %v", number, ErrForbidden, err)
		}
		return fmt.Errorf("set labels on #%d: %w", number, err)
	}
	return nil
}

// GetFileContent returns a file of the repository at ref.
func (a *API) GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error) {
	var opts *github.RepositoryContentGetOptions
	if ref != "" {
		opts = &github.RepositoryContentGetOptions{Ref: ref}
	}

	file, _, _, err := a.client.Repositories.GetContents(ctx, owner, repo, path, opts)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	if file == nil {
		return nil, fmt.Errorf("get %s: not a file", path)
	}
	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return []byte(content), nil
}

func isForbidden(err error) bool {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode == http.StatusForbidden
	}
	return false
}
