package boxapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// DefaultTokenURL is the Box OAuth2 token endpoint.
const DefaultTokenURL = "https://api.box.com/oauth2/token"

// Subject types for the client credentials grant.
const (
	SubjectEnterprise = "enterprise"
	SubjectUser       = "user"
)

// ErrNoCredentials is returned when neither a developer token nor a
// client credentials pair is configured.
var ErrNoCredentials = errors.New("boxapi: no credentials configured")

// StaticTokenSource returns a TokenSource that always yields the given
// developer token. Developer tokens expire server-side; there is no
// refresh path.
func StaticTokenSource(token string) TokenSource {
	return staticToken(token)
}

type staticToken string

func (t staticToken) Token() (string, error) {
	if t == "" {
		return "", ErrNoCredentials
	}

	return string(t), nil
}

// CCGConfig holds the inputs for the Box client credentials grant.
type CCGConfig struct {
	ClientID     string
	ClientSecret string
	SubjectType  string // SubjectEnterprise or SubjectUser
	SubjectID    string // enterprise ID or user ID
	TokenURL     string // defaults to DefaultTokenURL
}

// CCGTokenSource returns an oauth2.TokenSource backed by the Box
// client credentials grant. Token refresh is handled by oauth2's reuse
// machinery; the context bounds the token requests themselves. Wrap
// the result with OAuth2TokenSource (optionally via a cache) to use it
// with NewClient.
func CCGTokenSource(ctx context.Context, cfg CCGConfig) (oauth2.TokenSource, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ErrNoCredentials
	}

	if cfg.SubjectType == "" || cfg.SubjectID == "" {
		return nil, fmt.Errorf("boxapi: client credentials grant requires subject type and ID")
	}

	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
		EndpointParams: url.Values{
			"box_subject_type": {cfg.SubjectType},
			"box_subject_id":   {cfg.SubjectID},
		},
	}

	return cc.TokenSource(ctx), nil
}

// OAuth2TokenSource adapts an oauth2.TokenSource to the boxapi
// TokenSource interface.
func OAuth2TokenSource(ts oauth2.TokenSource) TokenSource {
	return oauth2Adapter{ts: ts}
}

type oauth2Adapter struct {
	ts oauth2.TokenSource
}

func (a oauth2Adapter) Token() (string, error) {
	tok, err := a.ts.Token()
	if err != nil {
		return "", fmt.Errorf("boxapi: obtaining OAuth2 token: %w", err)
	}

	return tok.AccessToken, nil
}
