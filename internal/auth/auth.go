// Package auth turns a service account key into authenticated HTTP clients
// for the catalog and spreadsheet APIs.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/sheets/v4"
	"google.golang.org/api/youtube/v3"

	"sayless/internal/storage"
	"sayless/pkg/httputil"
)

const (
	ScopeYouTubeReadOnly = youtube.YoutubeReadonlyScope
	ScopeSpreadsheets    = sheets.SpreadsheetsScope
)

type ServiceAccount struct {
	config  *jwt.Config
	timeout time.Duration
}

func Load(ctx context.Context, r storage.Reader, location string, timeout time.Duration, scopes ...string) (*ServiceAccount, error) {
	data, err := r.Read(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account: %w", err)
	}

	return Parse(data, timeout, scopes...)
}

func Parse(data []byte, timeout time.Duration, scopes ...string) (*ServiceAccount, error) {
	if len(scopes) == 0 {
		return nil, fmt.Errorf("no scopes requested")
	}

	cfg, err := google.JWTConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account: %w", err)
	}

	return &ServiceAccount{config: cfg, timeout: timeout}, nil
}

func (a *ServiceAccount) Email() string {
	return a.config.Email
}

func (a *ServiceAccount) Scopes() []string {
	return a.config.Scopes
}

// Client returns an HTTP client that signs requests with tokens minted for
// the service account. Token exchanges and API calls share the timeout.
func (a *ServiceAccount) Client(ctx context.Context) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httputil.NewClient(nil, a.timeout))

	return httputil.NewClient(&oauth2.Transport{
		Source: a.config.TokenSource(ctx),
		Base:   http.DefaultTransport,
	}, a.timeout)
}
