package rest

import (
	"encoding/base64"
	"net/http"

	"github.com/solstice-ai/artemis-connectors/internal/domain/errs"

	"golang.org/x/oauth2"
)

// Authenticator sets the Authorization header on an outgoing request.
type Authenticator interface {
	Apply(req *http.Request) error
}

type staticAuth string

func (a staticAuth) Apply(req *http.Request) error {
	req.Header.Set("Authorization", string(a))
	return nil
}

// BearerToken returns an Authenticator for a fixed Bearer token, such as a
// HubSpot private app token or a Salesforce session token.
func BearerToken(token string) Authenticator {
	return staticAuth("Bearer " + token)
}

// BasicAuth returns an Authenticator with a precomputed Basic header.
func BasicAuth(username, password string) Authenticator {
	creds := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return staticAuth("Basic " + creds)
}

type tokenSourceAuth struct {
	source oauth2.TokenSource
}

func (a *tokenSourceAuth) Apply(req *http.Request) error {
	token, err := a.source.Token()
	if err != nil {
		return errs.UnauthorizedErrorf("failed to obtain OAuth2 token: %v", err)
	}
	token.SetAuthHeader(req)
	return nil
}

// TokenSource returns an Authenticator backed by an oauth2.TokenSource.
// Refresh happens inside the source, so callers get a valid token on every
// request without tracking expiry themselves.
func TokenSource(source oauth2.TokenSource) Authenticator {
	return &tokenSourceAuth{source: source}
}

// None returns an Authenticator that leaves the request untouched, for
// engines that run without authentication (e.g. a local Camunda).
func None() Authenticator {
	return noAuth{}
}

type noAuth struct{}

func (noAuth) Apply(*http.Request) error { return nil }
