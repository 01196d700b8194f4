package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/fretsheet/internal/shared"
	"golang.org/x/oauth2"
)

// FlowOptions configures a local authorization flow.
type FlowOptions struct {
	Addr      string                // Listen address for the callback server
	Timeout   time.Duration         // How long to wait for the callback (default: 2 minutes)
	Logger    *log.Logger           // Optional request logging
	OnAuthURL func(authURL string)  // Called with the URL the user must visit
}

// RunFlow runs the OAuth2 authorization code flow against a temporary local
// HTTP server. It generates a state token, serves the callback once, and
// shuts the server down after a result or timeout.
//
// Google only issues a refresh token when offline access is requested, so the
// auth URL always carries access_type=offline with a forced consent prompt.
func RunFlow(ctx context.Context, config *oauth2.Config, opts FlowOptions) (*oauth2.Token, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}

	state, err := GenerateState()
	if err != nil {
		return nil, err
	}

	config.RedirectURL = fmt.Sprintf("http://%s/callback", opts.Addr)
	authURL := config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)

	handler := NewOAuthHandler(config, state)
	router := NewBasicRouter()
	if opts.Logger != nil {
		router.Use(Logging(opts.Logger))
	}
	router.Handler(handler)

	httpServer := &http.Server{
		Addr:    opts.Addr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	if opts.OnAuthURL != nil {
		opts.OnAuthURL(authURL)
	}

	timeout := time.NewTimer(opts.Timeout)
	defer timeout.Stop()

	var result OAuthResult
	select {
	case result = <-handler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return nil, fmt.Errorf("callback server error: %w", err)
	case <-ctx.Done():
		shutdown(httpServer)
		return nil, ctx.Err()
	case <-timeout.C:
		shutdown(httpServer)
		return nil, fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, opts.Timeout)
	}

	shutdown(httpServer)

	if result.Error() != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, result.Error())
	}
	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}
	return result.Token, nil
}

func shutdown(s *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.Shutdown(ctx)
}
