package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cascade/bitbucket-mcp-server/bitbucket"
)

// Config holds application configuration. Values are taken from environment
// variables with the prefix "BITBUCKET_".
// Example: BITBUCKET_AUTH_METHOD=apitoken BITBUCKET_EMAIL=dev@example.com .
type Config struct {
	BaseURL string `envconfig:"BASE_URL" default:"https://api.bitbucket.org/2.0"`

	// AuthMethod selects the credential scheme: bearer | apitoken |
	// apppassword | oauth. Empty means infer from whichever credential
	// fields are set.
	AuthMethod string `envconfig:"AUTH_METHOD"`

	AccessToken       string `envconfig:"ACCESS_TOKEN"`
	Email             string `envconfig:"EMAIL"`
	APIToken          string `envconfig:"API_TOKEN"`
	Username          string `envconfig:"USERNAME"`
	AppPassword       string `envconfig:"APP_PASSWORD"`
	OAuthClientID     string `envconfig:"OAUTH_CLIENT_ID"`
	OAuthClientSecret string `envconfig:"OAUTH_CLIENT_SECRET"`
	OAuthRefreshToken string `envconfig:"OAUTH_REFRESH_TOKEN"`
	TokenURL          string `envconfig:"TOKEN_URL"`

	Timeout    time.Duration `envconfig:"TIMEOUT" default:"30s"`
	MaxRetries int           `envconfig:"MAX_RETRIES" default:"3"`
	RetryDelay time.Duration `envconfig:"RETRY_DELAY" default:"1s"`

	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	ServerName    string `envconfig:"MCP_SERVER_NAME" default:"bitbucket-mcp-server"`
	ServerVersion string `envconfig:"MCP_SERVER_VERSION" default:"0.1.0"`

	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8937"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	HTTPReadTimeout time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"5s"`
	HTTPIdleTimeout time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"120s"`
}

// Load populates Config from environment variables (prefix BITBUCKET_).
func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("BITBUCKET", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Init initializes logging from the loaded configuration.
func (c *Config) Init() {
	InitLogger()
	SetLogLevel(ParseLogLevel(c.LogLevel))

	log.Info().
		Str("base_url", c.BaseURL).
		Str("auth_method", c.AuthMethod).
		Str("log_level", c.LogLevel).
		Msg("Application configuration loaded")
}

// AuthConfig maps the environment credentials onto the client's tagged auth
// variant. An explicit AuthMethod wins; otherwise the method is inferred from
// whichever credential fields are present.
func (c *Config) AuthConfig() (bitbucket.AuthConfig, error) {
	method := bitbucket.AuthMethod(c.AuthMethod)
	if c.AuthMethod == "" {
		switch {
		case c.OAuthClientID != "" || c.OAuthRefreshToken != "":
			method = bitbucket.AuthOAuth
		case c.Email != "" && c.APIToken != "":
			method = bitbucket.AuthAPIToken
		case c.Username != "" && c.AppPassword != "":
			method = bitbucket.AuthAppPassword
		case c.AccessToken != "":
			method = bitbucket.AuthBearer
		default:
			return bitbucket.AuthConfig{}, errNoCredentials
		}
	}

	switch method {
	case bitbucket.AuthBearer, bitbucket.AuthAPIToken, bitbucket.AuthAppPassword, bitbucket.AuthOAuth:
	default:
		return bitbucket.AuthConfig{}, &UnknownAuthMethodError{Method: c.AuthMethod}
	}

	return bitbucket.AuthConfig{
		Method:       method,
		AccessToken:  c.AccessToken,
		Email:        c.Email,
		APIToken:     c.APIToken,
		Username:     c.Username,
		Password:     c.AppPassword,
		ClientID:     c.OAuthClientID,
		ClientSecret: c.OAuthClientSecret,
		RefreshToken: c.OAuthRefreshToken,
		TokenURL:     c.TokenURL,
	}, nil
}

// NewClient builds the Bitbucket client from the loaded configuration.
func (c *Config) NewClient() (*bitbucket.Client, error) {
	authCfg, err := c.AuthConfig()
	if err != nil {
		return nil, err
	}
	provider, err := bitbucket.NewAuthProvider(authCfg)
	if err != nil {
		return nil, err
	}
	return bitbucket.New(c.BaseURL,
		bitbucket.WithAuth(provider),
		bitbucket.WithTimeout(c.Timeout),
		bitbucket.WithMaxRetries(c.MaxRetries),
		bitbucket.WithRetryDelay(c.RetryDelay),
	)
}

// ParseLogLevel parses log level or returns the default (info).
func ParseLogLevel(levelStr string) zerolog.Level {
	switch levelStr {
	case "debug", "DEBUG":
		return zerolog.DebugLevel
	case "info", "INFO":
		return zerolog.InfoLevel
	case "warn", "WARN":
		return zerolog.WarnLevel
	case "error", "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
