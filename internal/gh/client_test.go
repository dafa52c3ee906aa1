package gh

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"testing"

	"github.com/google/go-github/v71/github"
)

func setupServer(t *testing.T) (*API, *http.ServeMux) {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := github.NewClient(nil)
	u, err := url.Parse(srv.URL + "/")
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	client.BaseURL = u
	return NewFromClient(client), mux
}

func TestGetPullRequest(t *testing.T) {
	api, mux := setupServer(t)
	mux.HandleFunc("/repos/octo/widgets/pulls/7", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"number":7,"title":"Add docs","draft":true,"labels":[{"name":"docs"},{"name":"bug"}]}`)
	})

	pr, err := api.GetPullRequest(context.Background(), "octo", "widgets", 7)
	if err != nil {
		t.Fatalf("GetPullRequest: %v", err)
	}
	if pr.Number != 7 || pr.Title != "Add docs" || !pr.Draft {
		t.Errorf("pr = %+v", pr)
	}
	if !slices.Equal(pr.Labels, []string{"docs", "bug"}) {
		t.Errorf("Labels = %v", pr.Labels)
	}
}

func TestListFilesPaginates(t *testing.T) {
	api, mux := setupServer(t)
	var srvURL string
	mux.HandleFunc("/repos/octo/widgets/pulls/7/files", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("per_page"); got != "100" {
			t.Errorf("per_page = %q, want 100", got)
		}
		switch r.URL.Query().Get("page") {
		case "", "1":
			srvURL = "http://" + r.Host
			w.Header().Set("Link", fmt.Sprintf(`<%s/repos/octo/widgets/pulls/7/files?page=2&per_page=100>; rel="next"`, srvURL))
			fmt.Fprint(w, `[{"filename":"a.go"},{"filename":"docs/b.md"}]`)
		case "2":
			fmt.Fprint(w, `[{"filename":"c.txt"}]`)
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	})

	files, err := api.ListFiles(context.Background(), "octo", "widgets", 7)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if want := []string{"a.go", "docs/b.md", "c.txt"}; !slices.Equal(files, want) {
		t.Errorf("files = %v, want %v", files, want)
	}
}

func TestReplaceLabels(t *testing.T) {
	api, mux := setupServer(t)
	var got []string
	mux.HandleFunc("/repos/octo/widgets/issues/7/labels", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got)
		fmt.Fprint(w, `[]`)
	})

	if err := api.ReplaceLabels(context.Background(), "octo", "widgets", 7, []string{"docs", "go"}); err != nil {
		t.Fatalf("ReplaceLabels: %v", err)
	}
	if !slices.Equal(got, []string{"docs", "go"}) {
		t.Errorf("sent labels = %v", got)
	}
}

func TestReplaceLabelsForbidden(t *testing.T) {
	api, mux := setupServer(t)
	mux.HandleFunc("/repos/octo/widgets/issues/7/labels", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message":"Resource not accessible by integration"}`)
	})

	err := api.ReplaceLabels(context.Background(), "octo", "widgets", 7, []string{"docs"})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden", err)
	}
}

func TestReplaceLabelsServerError(t *testing.T) {
	api, mux := setupServer(t)
	mux.HandleFunc("/repos/octo/widgets/issues/7/labels", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"message":"Validation Failed"}`)
	})

	err := api.ReplaceLabels(context.Background(), "octo", "widgets", 7, []string{"docs"})
	if err == nil || errors.Is(err, ErrForbidden) {
		t.Errorf("error = %v, want a non-forbidden error", err)
	}
}

func TestGetFileContent(t *testing.T) {
	api, mux := setupServer(t)
	content := "docs: 'docs/**'\n"
	mux.HandleFunc("/repos/octo/widgets/contents/.github/labeler.yml", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("ref"); got != "abc123" {
			t.Errorf("ref = %q, want abc123", got)
		}
		fmt.Fprintf(w, `{"type":"file","encoding":"base64","content":%q}`, base64.StdEncoding.EncodeToString([]byte(content)))
	})

	data, err := api.GetFileContent(context.Background(), "octo", "widgets", ".github/labeler.yml", "abc123")
	if err != nil {
		t.Fatalf("GetFileContent: %v", err)
	}
	if string(data) != content {
		t.Errorf("content = %q, want %q", data, content)
	}
}

func TestNewRequiresToken(t *testing.T) {
	if _, err := New(context.Background(), "", ""); err == nil {
		t.Error("expected error without token")
	}
	if _, err := New(context.Background(), "t", "https://ghe.example.com/api/v3/"); err != nil {
		t.Errorf("New with enterprise URL: %v", err)
	}
}
