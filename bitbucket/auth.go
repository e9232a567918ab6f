package bitbucket

import (
	"context"
	"encoding/base64"
	"strings"
)

// AuthProvider yields the Authorization header value for outgoing requests.
// Providers are constructed once at startup and shared by all calls from one
// client; the OAuth variant is the only one that mutates state afterwards.
type AuthProvider interface {
	// Header returns the full Authorization header value. It may perform
	// network I/O (OAuth token refresh).
	Header(ctx context.Context) (string, error)

	// Valid reports whether the provider holds usable credentials.
	Valid() bool

	// Method names the auth scheme for logging.
	Method() string
}

// Refresher is implemented by providers whose credentials can be renewed on
// demand.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// AuthMethod selects one of the four supported credential schemes.
type AuthMethod string

const (
	AuthBearer      AuthMethod = "bearer"
	AuthAPIToken    AuthMethod = "apitoken"
	AuthAppPassword AuthMethod = "apppassword"
	AuthOAuth       AuthMethod = "oauth"
)

// AuthConfig is the tagged credential variant consumed by NewAuthProvider.
// Only the fields for the selected Method are read.
type AuthConfig struct {
	Method AuthMethod

	// bearer
	AccessToken string

	// apitoken: Bitbucket Cloud personal API tokens authenticate with
	// Basic auth using the account email as the username.
	Email    string
	APIToken string

	// apppassword: Bitbucket Server / app passwords.
	Username string
	Password string

	// oauth
	ClientID     string
	ClientSecret string
	RefreshToken string
	TokenURL     string
}

// NewAuthProvider constructs the concrete provider for cfg.Method.
func NewAuthProvider(cfg AuthConfig) (AuthProvider, error) {
	switch cfg.Method {
	case AuthBearer:
		return NewBearerAuth(cfg.AccessToken)
	case AuthAPIToken:
		return NewAPITokenAuth(cfg.Email, cfg.APIToken)
	case AuthAppPassword:
		return NewAppPasswordAuth(cfg.Username, cfg.Password)
	case AuthOAuth:
		return NewOAuthProvider(cfg)
	default:
		return nil, configError("unknown auth method %q", cfg.Method)
	}
}

// --------------------------------------------------------------------
// Bearer token
// --------------------------------------------------------------------

// BearerAuth sends a static access token as "Bearer <token>".
type BearerAuth struct {
	token string
}

func NewBearerAuth(token string) (*BearerAuth, error) {
	if strings.TrimSpace(token) == "" {
		return nil, configError("bearer auth: access token is required")
	}
	return &BearerAuth{token: token}, nil
}

func (b *BearerAuth) Header(context.Context) (string, error) {
	return "Bearer " + b.token, nil
}

func (b *BearerAuth) Valid() bool    { return strings.TrimSpace(b.token) != "" }
func (b *BearerAuth) Method() string { return "bearer" }

// --------------------------------------------------------------------
// API token (email as Basic username)
// --------------------------------------------------------------------

// APITokenAuth authenticates with a Bitbucket Cloud personal API token.
// The upstream API requires Basic auth with the account email as the
// username for these tokens, unlike OAuth access tokens which use Bearer.
type APITokenAuth struct {
	email string
	token string
}

func NewAPITokenAuth(email, token string) (*APITokenAuth, error) {
	if strings.TrimSpace(email) == "" {
		return nil, configError("api token auth: email is required")
	}
	if strings.TrimSpace(token) == "" {
		return nil, configError("api token auth: token is required")
	}
	return &APITokenAuth{email: email, token: token}, nil
}

func (a *APITokenAuth) Header(context.Context) (string, error) {
	return basicHeader(a.email, a.token), nil
}

func (a *APITokenAuth) Valid() bool {
	return strings.TrimSpace(a.email) != "" && strings.TrimSpace(a.token) != ""
}
func (a *APITokenAuth) Method() string { return "apitoken" }

// --------------------------------------------------------------------
// Username + app password
// --------------------------------------------------------------------

// AppPasswordAuth authenticates with a username and app password, the scheme
// used by Bitbucket Server and self-hosted deployments.
type AppPasswordAuth struct {
	username string
	password string
}

func NewAppPasswordAuth(username, password string) (*AppPasswordAuth, error) {
	if strings.TrimSpace(username) == "" {
		return nil, configError("app password auth: username is required")
	}
	if strings.TrimSpace(password) == "" {
		return nil, configError("app password auth: password is required")
	}
	return &AppPasswordAuth{username: username, password: password}, nil
}

func (a *AppPasswordAuth) Header(context.Context) (string, error) {
	return basicHeader(a.username, a.password), nil
}

func (a *AppPasswordAuth) Valid() bool {
	return strings.TrimSpace(a.username) != "" && strings.TrimSpace(a.password) != ""
}
func (a *AppPasswordAuth) Method() string { return "apppassword" }

func basicHeader(user, secret string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+secret))
}
