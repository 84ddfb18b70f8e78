// Package auth runs the Strava OAuth flow used by activity import and keeps
// the resulting tokens fresh.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"elevedit/internal/monitoring"
)

const (
	// CallbackPort is the port for the OAuth callback server
	CallbackPort = 8089
	// AuthTimeout is how long to wait for the user to complete auth
	AuthTimeout = 5 * time.Minute

	// import needs the activity list and streams, private activities included
	stravaScope = "read,activity:read_all"
)

// StravaEndpoint is Strava's OAuth endpoint. Strava expects the client
// credentials as form parameters of the token request.
var StravaEndpoint = oauth2.Endpoint{
	AuthURL:   "https://www.strava.com/oauth/authorize",
	TokenURL:  "https://www.strava.com/oauth/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// ErrStateMismatch is returned when the callback state doesn't match the request
var ErrStateMismatch = errors.New("state mismatch - possible CSRF attack")

// Credentials identify the elevedit app registered with Strava
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// OAuthConfig returns the client configuration redirecting to the local
// callback served by Authenticate.
func (c Credentials) OAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     StravaEndpoint,
		RedirectURL:  DefaultRedirectURL(),
		Scopes:       []string{stravaScope},
	}
}

// DefaultRedirectURL is the callback served by Authenticate
func DefaultRedirectURL() string {
	return fmt.Sprintf("http://localhost:%d/callback", CallbackPort)
}

// AuthResult is a granted token and the athlete it belongs to
type AuthResult struct {
	Token     *oauth2.Token
	AthleteID int64
}

// athleteID reads the athlete summary Strava adds to the token response.
// It returns 0 when the response has none.
func athleteID(token *oauth2.Token) int64 {
	athlete, _ := token.Extra("athlete").(map[string]interface{})
	id, _ := athlete["id"].(float64)
	return int64(id)
}

// Authenticate runs the OAuth flow with a local callback server. prompt
// receives the URL the user has to open; the caller decides how to show it.
func Authenticate(ctx context.Context, cfg *oauth2.Config, prompt func(authURL string)) (*AuthResult, error) {
	// Generate state for CSRF protection
	state, err := generateState()
	if err != nil {
		return nil, fmt.Errorf("generating state: %w", err)
	}

	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	// Create server mux (don't use DefaultServeMux)
	mux := http.NewServeMux()
	mux.Handle("/callback", callbackHandler(state, codeChan, errChan))

	// Start local server
	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", CallbackPort))
	if err != nil {
		return nil, fmt.Errorf("starting callback server: %w", err)
	}

	server := &http.Server{Handler: mux}

	go func() {
		if err := server.Serve(listener); err != http.ErrServerClosed {
			select {
			case errChan <- fmt.Errorf("server error: %w", err):
			default:
			}
		}
	}()

	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
	monitoring.Logf("auth: waiting for Strava callback on port %d", CallbackPort)
	if prompt != nil {
		prompt(authURL)
	}

	// Wait for callback with timeout
	var code string
	select {
	case code = <-codeChan:
		// Success
	case err := <-errChan:
		shutdownServer(server)
		return nil, err
	case <-time.After(AuthTimeout):
		shutdownServer(server)
		return nil, fmt.Errorf("authentication timeout after %v", AuthTimeout)
	case <-ctx.Done():
		shutdownServer(server)
		return nil, ctx.Err()
	}

	shutdownServer(server)

	// Exchange code for token
	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging code for token: %w", err)
	}

	return &AuthResult{
		Token:     token,
		AthleteID: athleteID(token),
	}, nil
}

// callbackHandler validates the OAuth redirect and forwards the code or the error.
// Only the first outcome is delivered.
func callbackHandler(state string, codeChan chan<- string, errChan chan<- error) http.Handler {
	fail := func(w http.ResponseWriter, err error, msg string) {
		select {
		case errChan <- err:
		default:
		}
		http.Error(w, msg, http.StatusBadRequest)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			fail(w, ErrStateMismatch, "State mismatch")
			return
		}
		if errMsg := q.Get("error"); errMsg != "" {
			fail(w, fmt.Errorf("auth error: %s", errMsg), "Authentication failed")
			return
		}
		code := q.Get("code")
		if code == "" {
			fail(w, errors.New("no code in callback"), "No authorization code")
			return
		}

		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><title>Authentication Successful</title></head>
<body style="font-family: system-ui; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0;">
<div style="text-align: center;">
<h1 style="color: #10B981;">Connected to Strava</h1>
<p>You can close this window and return to elevedit.</p>
</div>
</body>
</html>`)
		select {
		case codeChan <- code:
		default:
		}
	})
}

// generateState creates a random state string for CSRF protection
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// shutdownServer gracefully shuts down the HTTP server
func shutdownServer(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	server.Shutdown(ctx)
}
