package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/desertthunder/fretsheet/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// SpreadsheetScope grants read/write access to the user's spreadsheets.
const SpreadsheetScope = "https://www.googleapis.com/auth/spreadsheets"

// LoadOAuthConfig reads an OAuth client secret file (the JSON downloaded from
// the Google Cloud console) into an [oauth2.Config].
func LoadOAuthConfig(credentialsFile string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", shared.ErrMissingCredentials, credentialsFile)
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	conf, err := google.ConfigFromJSON(data, SpreadsheetScope)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidCredentials, err)
	}
	return conf, nil
}

// LoadToken reads a previously saved OAuth token.
func LoadToken(tokenFile string) (*oauth2.Token, error) {
	data, err := os.ReadFile(tokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: run auth login first", shared.ErrNotAuthenticated)
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidCredentials, err)
	}
	return &tok, nil
}

// SaveToken writes an OAuth token to disk, readable only by the owner.
func SaveToken(tokenFile string, tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(tokenFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// persistingTokenSource writes refreshed tokens back to the token file so the
// next invocation can skip the browser flow.
type persistingTokenSource struct {
	path string
	src  oauth2.TokenSource

	mu   sync.Mutex
	last string
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := p.src.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if tok.AccessToken != p.last {
		// The refreshed token is still usable when persistence fails.
		_ = SaveToken(p.path, tok)
		p.last = tok.AccessToken
	}
	return tok, nil
}

// NewHTTPClient builds an HTTP client that attaches the OAuth token to every
// request, refreshing it as needed and persisting refreshes to tokenFile.
func NewHTTPClient(ctx context.Context, conf *oauth2.Config, tok *oauth2.Token, tokenFile string) *http.Client {
	src := &persistingTokenSource{
		path: tokenFile,
		src:  conf.TokenSource(ctx, tok),
		last: tok.AccessToken,
	}
	return oauth2.NewClient(ctx, src)
}
