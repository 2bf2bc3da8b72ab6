// Package gsheets builds an authenticated Sheets service from the offline
// refresh-token credentials the pipeline runs with.
package gsheets

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	sheets "google.golang.org/api/sheets/v4"
	"google.golang.org/api/option"
)

// Credentials carries the OAuth client and its long-lived refresh token.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// Valid reports whether all three credential parts are present.
func (c Credentials) Valid() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// NewService constructs a Sheets client whose token source refreshes
// access tokens from the stored refresh token as needed.
func NewService(ctx context.Context, creds Credentials) (*sheets.Service, error) {
	if !creds.Valid() {
		return nil, errors.New("incomplete google oauth credentials")
	}

	conf := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{sheets.SpreadsheetsScope},
	}
	tokenSource := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken})

	return sheets.NewService(ctx, option.WithTokenSource(tokenSource))
}
