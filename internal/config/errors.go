package config

import (
	"errors"
	"fmt"
)

var errNoCredentials = errors.New("no Bitbucket credentials configured: set BITBUCKET_ACCESS_TOKEN, BITBUCKET_EMAIL + BITBUCKET_API_TOKEN, BITBUCKET_USERNAME + BITBUCKET_APP_PASSWORD, or OAuth client settings")

// UnknownAuthMethodError reports an unrecognised BITBUCKET_AUTH_METHOD value.
type UnknownAuthMethodError struct {
	Method string
}

func (e *UnknownAuthMethodError) Error() string {
	return fmt.Sprintf("unknown auth method %q: expected bearer, apitoken, apppassword, or oauth", e.Method)
}
