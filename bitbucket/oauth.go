package bitbucket

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// DefaultTokenURL is the Bitbucket Cloud OAuth2 token endpoint.
const DefaultTokenURL = "https://bitbucket.org/site/oauth2/access_token"

// tokenExpiryMargin is subtracted from the server-reported expires_in so a
// token is refreshed before it actually lapses server-side.
const tokenExpiryMargin = 5 * time.Minute

// tokenResponse mirrors the token endpoint's JSON payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scopes       string `json:"scopes,omitempty"`
}

// OAuthProvider authenticates with OAuth2, supporting both the
// client-credentials and refresh-token grants. It is the only provider with
// mutable state: the cached access token, refresh token, and expiry are
// rewritten in place on every successful token fetch.
//
// Calls are sequential in this design, but token state is mutex-guarded so a
// future parallel caller cannot race the refresh path.
type OAuthProvider struct {
	clientID     string
	clientSecret string
	tokenURL     string
	http         *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	expiry       time.Time // zero when the server gave no expires_in

	now func() time.Time // overridable in tests
}

// NewOAuthProvider constructs the provider. Construction fails only when
// neither a pre-supplied access token nor a client-id/secret pair is present;
// a bare refresh token plus client credentials (or a bare access token) is a
// valid starting state.
func NewOAuthProvider(cfg AuthConfig) (*OAuthProvider, error) {
	hasToken := strings.TrimSpace(cfg.AccessToken) != "" || strings.TrimSpace(cfg.RefreshToken) != ""
	hasCreds := strings.TrimSpace(cfg.ClientID) != "" && strings.TrimSpace(cfg.ClientSecret) != ""
	if !hasToken && !hasCreds {
		return nil, configError("oauth: either an access/refresh token or a client id and secret are required")
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	return &OAuthProvider{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		tokenURL:     tokenURL,
		accessToken:  cfg.AccessToken,
		refreshToken: cfg.RefreshToken,
		http:         &http.Client{Timeout: 30 * time.Second},
		now:          time.Now,
	}, nil
}

func (p *OAuthProvider) Header(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ensureValidToken(ctx); err != nil {
		return "", err
	}
	return "Bearer " + p.accessToken, nil
}

func (p *OAuthProvider) Valid() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.accessToken != "" || p.refreshToken != "" ||
		(p.clientID != "" && p.clientSecret != "")
}

func (p *OAuthProvider) Method() string { return "oauth" }

// Refresh forces a token renewal regardless of the cached expiry, using the
// refresh token when present and falling back to client credentials.
func (p *OAuthProvider) Refresh(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.refreshToken != "":
		return p.fetchToken(ctx, url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {p.refreshToken},
		})
	case p.clientID != "" && p.clientSecret != "":
		return p.fetchToken(ctx, url.Values{"grant_type": {"client_credentials"}})
	default:
		return authError("oauth: no refresh token or client credentials available")
	}
}

// ensureValidToken is the provider's state machine:
// NoToken -> HasValidToken -> Expired -> (refresh) -> HasValidToken.
// Callers must hold p.mu.
func (p *OAuthProvider) ensureValidToken(ctx context.Context) error {
	if p.accessToken != "" {
		// No expiry info means the server never told us; trust the token.
		if p.expiry.IsZero() || p.now().Before(p.expiry) {
			return nil
		}
	}
	switch {
	case p.refreshToken != "":
		return p.fetchToken(ctx, url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {p.refreshToken},
		})
	case p.clientID != "" && p.clientSecret != "":
		return p.fetchToken(ctx, url.Values{"grant_type": {"client_credentials"}})
	default:
		return authError("oauth: access token expired and no way to renew it")
	}
}

// fetchToken performs one round trip to the token endpoint and overwrites the
// cached token state on success. Callers must hold p.mu.
func (p *OAuthProvider) fetchToken(ctx context.Context, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return authError("oauth: build token request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if p.clientID != "" {
		req.Header.Set("Authorization", basicHeader(p.clientID, p.clientSecret))
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return authError("oauth: token request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return authError("oauth: token endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var tok tokenResponse
	if err := json.Unmarshal(raw, &tok); err != nil {
		return authError("oauth: decode token response: %v", err)
	}
	if tok.AccessToken == "" {
		return authError("oauth: token endpoint returned no access_token")
	}

	p.accessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		p.refreshToken = tok.RefreshToken
	}
	if tok.ExpiresIn > 0 {
		p.expiry = p.now().Add(time.Duration(tok.ExpiresIn)*time.Second - tokenExpiryMargin)
	} else {
		p.expiry = time.Time{}
	}
	return nil
}
