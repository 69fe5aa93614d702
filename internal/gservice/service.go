// Package gservice wraps the Google Workspace APIs (Gmail, Calendar,
// Docs) behind the provider interfaces the agents consume.
package gservice

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	docs "google.golang.org/api/docs/v1"
	gmail "google.golang.org/api/gmail/v1"

	"github.com/mohammad-safakhou/daybrief/config"
)

// Credentials holds the OAuth2 client configuration and the user token.
type Credentials struct {
	cfg   *oauth2.Config
	token *oauth2.Token
}

// LoadCredentials reads the OAuth2 client secret and a previously
// authorized user token from disk. The token must already exist; the
// interactive authorization flow is a separate concern.
func LoadCredentials(cfg config.GoogleConfig) (*Credentials, error) {
	secret, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}

	oauthCfg, err := google.ConfigFromJSON(secret,
		gmail.GmailReadonlyScope,
		calendar.CalendarScope,
		docs.DocumentsScope,
	)
	if err != nil {
		return nil, fmt.Errorf("parsing client secret: %w", err)
	}

	f, err := os.Open(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("opening token file: %w", err)
	}
	defer f.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("decoding token file: %w", err)
	}

	return &Credentials{cfg: oauthCfg, token: token}, nil
}

// Client returns an HTTP client that refreshes the token as needed.
func (c *Credentials) Client(ctx context.Context) *http.Client {
	return c.cfg.Client(ctx, c.token)
}
