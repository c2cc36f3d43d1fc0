// Package gauth turns the configured Google credential sources into client
// options shared by the Firestore store and the Sheets exporter.
//
// Two sources are supported: a service account (inline JSON or file) and an
// installed-app OAuth client plus a user token minted by cmd/oauth-init.
// The service account wins when both are present.
package gauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

type Credentials struct {
	ServiceAccountJSON string
	ServiceAccountFile string
	OAuthClientJSON    string
	OAuthClientFile    string
	OAuthTokenJSON     string
	OAuthTokenFile     string
}

var ErrNoCredentials = errors.New("no google credentials configured")

func (c Credentials) hasServiceAccount() bool {
	return strings.TrimSpace(c.ServiceAccountJSON) != "" || strings.TrimSpace(c.ServiceAccountFile) != ""
}

func (c Credentials) hasOAuth() bool {
	hasClient := strings.TrimSpace(c.OAuthClientJSON) != "" || strings.TrimSpace(c.OAuthClientFile) != ""
	hasToken := strings.TrimSpace(c.OAuthTokenJSON) != "" || strings.TrimSpace(c.OAuthTokenFile) != ""
	return hasClient && hasToken
}

// Configured reports whether any complete credential source is present.
func (c Credentials) Configured() bool {
	return c.hasServiceAccount() || c.hasOAuth()
}

// ClientOptions builds the options for a Google API client with the given
// scopes.
func (c Credentials) ClientOptions(ctx context.Context, scopes ...string) ([]option.ClientOption, error) {
	switch {
	case c.hasServiceAccount():
		b, err := readInlineOrFile(c.ServiceAccountJSON, c.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account: %w", err)
		}
		slog.InfoContext(ctx, "Using service account credentials", "credentials_size", len(b), "scopes", scopes)
		return []option.ClientOption{
			option.WithCredentialsJSON(b),
			option.WithScopes(scopes...),
		}, nil

	case c.hasOAuth():
		clientJSON, err := readInlineOrFile(c.OAuthClientJSON, c.OAuthClientFile)
		if err != nil {
			return nil, fmt.Errorf("read oauth client: %w", err)
		}
		cfg, err := google.ConfigFromJSON(clientJSON, scopes...)
		if err != nil {
			return nil, fmt.Errorf("oauth config: %w", err)
		}
		tokenJSON, err := readInlineOrFile(c.OAuthTokenJSON, c.OAuthTokenFile)
		if err != nil {
			return nil, fmt.Errorf("read oauth token: %w", err)
		}
		tok := &oauth2.Token{}
		if err := json.Unmarshal(tokenJSON, tok); err != nil {
			return nil, fmt.Errorf("decode oauth token: %w", err)
		}
		slog.InfoContext(ctx, "Using OAuth user token", "scopes", scopes, "has_refresh_token", tok.RefreshToken != "")
		return []option.ClientOption{
			option.WithTokenSource(cfg.TokenSource(ctx, tok)),
		}, nil
	}
	return nil, ErrNoCredentials
}

func readInlineOrFile(inline, path string) ([]byte, error) {
	if s := strings.TrimSpace(inline); s != "" {
		return []byte(s), nil
	}
	b, err := os.ReadFile(strings.TrimSpace(path))
	if err != nil {
		return nil, err
	}
	return b, nil
}
