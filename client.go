package main

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"

	"github.com/arikorhonen/boxtext/internal/boxapi"
	"github.com/arikorhonen/boxtext/internal/config"
	"github.com/arikorhonen/boxtext/internal/tokencache"
)

// userAgent identifies this client to the Box API.
var userAgent = "boxtext/" + version

// buildClient constructs an authenticated Box API client from the
// resolved configuration. Credential problems are fatal here, before
// any API call is attempted: a developer token wins when both
// credential styles are configured, since it is the explicit
// debugging path.
func buildClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*boxapi.Client, error) {
	token, err := buildTokenSource(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	return boxapi.NewClient(cfg.API.BaseURL, defaultHTTPClient(), token, logger, userAgent), nil
}

func buildTokenSource(ctx context.Context, cfg *config.Config, logger *slog.Logger) (boxapi.TokenSource, error) {
	if !cfg.Auth.HasCredentials() {
		return nil, config.ErrNoCredentials
	}

	if cfg.Auth.DeveloperToken != "" {
		return boxapi.StaticTokenSource(cfg.Auth.DeveloperToken), nil
	}

	ccg, err := boxapi.CCGTokenSource(ctx, boxapi.CCGConfig{
		ClientID:     cfg.Auth.ClientID,
		ClientSecret: cfg.Auth.ClientSecret,
		SubjectType:  cfg.Auth.SubjectType,
		SubjectID:    cfg.Auth.SubjectID,
		TokenURL:     cfg.API.TokenURL,
	})
	if err != nil {
		return nil, fmt.Errorf("building token source: %w", err)
	}

	// Cache CCG tokens on disk so repeated CLI invocations within the
	// token lifetime skip the token endpoint.
	var ts oauth2.TokenSource = ccg
	if path := config.DefaultTokenPath(); path != "" {
		ts = tokencache.NewSource(path, ccg, logger)
	}

	return boxapi.OAuth2TokenSource(ts), nil
}
