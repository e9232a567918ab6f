package bitbucket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListRepositoriesQueryAndPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repositories/acme" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("role") != "member" || q.Get("sort") != "-updated_on" || q.Get("pagelen") != "50" {
			t.Errorf("unexpected query %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pagelen":50,"page":1,"values":[{"slug":"widget","full_name":"acme/widget"}]}`))
	}))
	defer srv.Close()

	c := MustNew(srv.URL)
	resp, err := c.ListRepositories(context.Background(), "acme",
		RepositoryFilter{Role: "member", Sort: "-updated_on"},
		PageOptions{Pagelen: 50})
	if err != nil {
		t.Fatalf("ListRepositories: %v", err)
	}
	if len(resp.Values) != 1 || resp.Values[0].Slug != "widget" {
		t.Fatalf("unexpected values %+v", resp.Values)
	}
}

func TestListRepositoriesRejectsBadWorkspace(t *testing.T) {
	c := MustNew("https://example.invalid")
	_, err := c.ListRepositories(context.Background(), "Bad Workspace", RepositoryFilter{}, PageOptions{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestForEachRepositoryFollowsNextLink(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("page") {
		case "1":
			_, _ = w.Write([]byte(`{"values":[{"slug":"one"}],"next":"` + srv.URL + `/repositories/acme?page=2"}`))
		case "2":
			_, _ = w.Write([]byte(`{"values":[{"slug":"two"}]}`))
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	}))
	defer srv.Close()

	c := MustNew(srv.URL)
	var slugs []string
	err := c.ForEachRepository(context.Background(), "acme", RepositoryFilter{}, PageOptions{}, func(repos []Repository) error {
		for _, r := range repos {
			slugs = append(slugs, r.Slug)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ForEachRepository: %v", err)
	}
	if len(slugs) != 2 || slugs[0] != "one" || slugs[1] != "two" {
		t.Fatalf("expected [one two], got %v", slugs)
	}
}
