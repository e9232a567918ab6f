package bitbucket

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func TestBearerAuthHeader(t *testing.T) {
	p, err := NewBearerAuth("abc123")
	if err != nil {
		t.Fatalf("NewBearerAuth: %v", err)
	}
	h, err := p.Header(context.Background())
	if err != nil {
		t.Fatalf("Header: %v", err)
	}
	if h != "Bearer abc123" {
		t.Fatalf("expected 'Bearer abc123', got %q", h)
	}
	if !p.Valid() {
		t.Fatal("expected Valid() to be true")
	}
	if p.Method() != "bearer" {
		t.Fatalf("unexpected method %q", p.Method())
	}
}

func TestBearerAuthRequiresToken(t *testing.T) {
	_, err := NewBearerAuth("  ")
	if err == nil {
		t.Fatal("expected error for empty token")
	}
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestAPITokenAuthHeader(t *testing.T) {
	p, err := NewAPITokenAuth("dev@example.com", "tok:en@value")
	if err != nil {
		t.Fatalf("NewAPITokenAuth: %v", err)
	}
	h, err := p.Header(context.Background())
	if err != nil {
		t.Fatalf("Header: %v", err)
	}
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("dev@example.com:tok:en@value"))
	if h != want {
		t.Fatalf("expected %q, got %q", want, h)
	}
}

func TestAPITokenAuthMissingFields(t *testing.T) {
	cases := []struct {
		name  string
		email string
		token string
		want  string
	}{
		{"missing email", "", "tok", "email"},
		{"missing token", "dev@example.com", "", "token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewAPITokenAuth(tc.email, tc.token)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not name missing field %q", err.Error(), tc.want)
			}
		})
	}
}

func TestAppPasswordAuthHeader(t *testing.T) {
	p, err := NewAppPasswordAuth("alice", "s3cret")
	if err != nil {
		t.Fatalf("NewAppPasswordAuth: %v", err)
	}
	h, err := p.Header(context.Background())
	if err != nil {
		t.Fatalf("Header: %v", err)
	}
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("alice:s3cret"))
	if h != want {
		t.Fatalf("expected %q, got %q", want, h)
	}
}

func TestAppPasswordAuthMissingFields(t *testing.T) {
	if _, err := NewAppPasswordAuth("", "pw"); err == nil {
		t.Fatal("expected error for missing username")
	}
	if _, err := NewAppPasswordAuth("alice", ""); err == nil {
		t.Fatal("expected error for missing password")
	}
}

func TestNewAuthProviderDispatch(t *testing.T) {
	cases := []struct {
		name   string
		cfg    AuthConfig
		method string
	}{
		{"bearer", AuthConfig{Method: AuthBearer, AccessToken: "t"}, "bearer"},
		{"apitoken", AuthConfig{Method: AuthAPIToken, Email: "a@b.c", APIToken: "t"}, "apitoken"},
		{"apppassword", AuthConfig{Method: AuthAppPassword, Username: "u", Password: "p"}, "apppassword"},
		{"oauth", AuthConfig{Method: AuthOAuth, ClientID: "id", ClientSecret: "sec"}, "oauth"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewAuthProvider(tc.cfg)
			if err != nil {
				t.Fatalf("NewAuthProvider: %v", err)
			}
			if p.Method() != tc.method {
				t.Fatalf("expected method %q, got %q", tc.method, p.Method())
			}
			if !p.Valid() {
				t.Fatal("expected Valid() to be true")
			}
		})
	}
}

func TestNewAuthProviderUnknownMethod(t *testing.T) {
	_, err := NewAuthProvider(AuthConfig{Method: "kerberos"})
	if err == nil {
		t.Fatal("expected error for unknown method")
	}
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}
