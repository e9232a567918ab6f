package bitbucket

import (
	"errors"
	"testing"
)

func TestValidateSlug(t *testing.T) {
	valid := []string{"acme", "my-repo", "my_repo", "repo.v2", "a1"}
	for _, s := range valid {
		if err := ValidateSlug(s, "repo_slug"); err != nil {
			t.Fatalf("expected %q to validate, got %v", s, err)
		}
	}

	invalid := []string{"", "My-Repo", "repo slug", "repo/slug", "répo"}
	for _, s := range invalid {
		err := ValidateSlug(s, "repo_slug")
		if err == nil {
			t.Fatalf("expected %q to fail validation", s)
		}
		if !errors.Is(err, ErrConfig) {
			t.Fatalf("expected ErrConfig for %q, got %v", s, err)
		}
	}
}

func TestValidateUUID(t *testing.T) {
	if err := ValidateUUID("7f000001-0000-0000-0000-000000000001", "uuid"); err != nil {
		t.Fatalf("bare uuid: %v", err)
	}
	if err := ValidateUUID("{7f000001-0000-0000-0000-000000000001}", "uuid"); err != nil {
		t.Fatalf("braced uuid: %v", err)
	}
	if err := ValidateUUID("", "uuid"); err == nil {
		t.Fatal("expected error for empty id")
	}
	if err := ValidateUUID("not-a-uuid", "uuid"); err == nil {
		t.Fatal("expected error for malformed id")
	}
}

func TestBraceUUID(t *testing.T) {
	if got := BraceUUID("abc"); got != "{abc}" {
		t.Fatalf("expected {abc}, got %s", got)
	}
	if got := BraceUUID("{abc}"); got != "{abc}" {
		t.Fatalf("already-braced id must pass through, got %s", got)
	}
}
