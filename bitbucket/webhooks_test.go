package bitbucket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const testUUID = "7f000001-0000-0000-0000-000000000001"

func TestCreateWebhookValidation(t *testing.T) {
	c := MustNew("https://example.invalid")

	_, err := c.CreateWebhook(context.Background(), "acme", "widget", CreateWebhookRequest{Events: []string{"repo:push"}})
	if err == nil {
		t.Fatal("expected error for missing url")
	}
	_, err = c.CreateWebhook(context.Background(), "acme", "widget", CreateWebhookRequest{URL: "https://hooks.example.com"})
	if err == nil {
		t.Fatal("expected error for missing events")
	}
}

func TestCreateWebhook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/repositories/acme/widget/hooks" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body CreateWebhookRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.URL != "https://hooks.example.com" || len(body.Events) != 2 {
			t.Errorf("unexpected body %+v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"uuid":"{` + testUUID + `}","url":"https://hooks.example.com","active":true,"events":["repo:push","pullrequest:created"]}`))
	}))
	defer srv.Close()

	c := MustNew(srv.URL)
	hook, err := c.CreateWebhook(context.Background(), "acme", "widget", CreateWebhookRequest{
		URL:    "https://hooks.example.com",
		Active: true,
		Events: []string{"repo:push", "pullrequest:created"},
	})
	if err != nil {
		t.Fatalf("CreateWebhook: %v", err)
	}
	if hook.UUID != "{"+testUUID+"}" {
		t.Fatalf("unexpected uuid %q", hook.UUID)
	}
}

func TestDeleteWebhookBracesUUID(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := MustNew(srv.URL)
	if err := c.DeleteWebhook(context.Background(), "acme", "widget", testUUID); err != nil {
		t.Fatalf("DeleteWebhook: %v", err)
	}
	want := "/repositories/acme/widget/hooks/{" + testUUID + "}"
	if gotPath != want {
		t.Fatalf("expected path %s, got %s", want, gotPath)
	}
}

func TestDeleteWebhookRejectsBadUUID(t *testing.T) {
	c := MustNew("https://example.invalid")
	err := c.DeleteWebhook(context.Background(), "acme", "widget", "not-a-uuid")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}
