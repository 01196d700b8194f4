// Package server provides HTTP routing, middleware, and the OAuth callback
// handling behind the Google Sheets authorization flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// OAuthHandler implements the OAuth2 authorization code callback flow.
//
// The handler validates the state parameter (CSRF protection), exchanges the authorization code for tokens,
// and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// # Flow
//
// [RunFlow] ties the pieces together for the CLI: it starts a temporary HTTP
// server on the configured host and port, directs the user's browser to
// Google's consent screen, waits for the callback, and shuts the server down
// once a token (or an error) arrives.
package server
