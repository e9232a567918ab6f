package bitbucket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTriggerPipelineDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body TriggerPipelineRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Target.Type != "pipeline_ref_target" {
			t.Errorf("expected default target type, got %q", body.Target.Type)
		}
		if body.Target.RefType != "branch" {
			t.Errorf("expected default ref_type branch, got %q", body.Target.RefType)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"uuid":"{` + testUUID + `}","build_number":42}`))
	}))
	defer srv.Close()

	c := MustNew(srv.URL)
	p, err := c.TriggerPipeline(context.Background(), "acme", "widget", TriggerPipelineRequest{
		Target: PipelineTarget{RefName: "main"},
	})
	if err != nil {
		t.Fatalf("TriggerPipeline: %v", err)
	}
	if p.BuildNumber != 42 {
		t.Fatalf("unexpected pipeline %+v", p)
	}
}

func TestTriggerPipelineRequiresTarget(t *testing.T) {
	c := MustNew("https://example.invalid")
	_, err := c.TriggerPipeline(context.Background(), "acme", "widget", TriggerPipelineRequest{})
	if err == nil {
		t.Fatal("expected error for empty target")
	}
}

func TestStopPipelinePath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := MustNew(srv.URL)
	if err := c.StopPipeline(context.Background(), "acme", "widget", testUUID); err != nil {
		t.Fatalf("StopPipeline: %v", err)
	}
	want := "/repositories/acme/widget/pipelines/{" + testUUID + "}/stopPipeline"
	if gotPath != want {
		t.Fatalf("expected path %s, got %s", want, gotPath)
	}
}

func TestListPipelinesSortsNewestFirst(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("sort"); got != "-created_on" {
			t.Errorf("expected sort -created_on, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"values":[]}`))
	}))
	defer srv.Close()

	c := MustNew(srv.URL)
	if _, err := c.ListPipelines(context.Background(), "acme", "widget", PageOptions{}); err != nil {
		t.Fatalf("ListPipelines: %v", err)
	}
}
