package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"elevedit/internal/timeutil"
)

func TestCallbackHandler(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantCode string
		wantErr  bool
		status   int
	}{
		{"success", "?state=abc&code=xyz", "xyz", false, http.StatusOK},
		{"state mismatch", "?state=evil&code=xyz", "", true, http.StatusBadRequest},
		{"denied", "?state=abc&error=access_denied", "", true, http.StatusBadRequest},
		{"missing code", "?state=abc", "", true, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codeChan := make(chan string, 1)
			errChan := make(chan error, 1)
			h := callbackHandler("abc", codeChan, errChan)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback"+tt.query, nil))
			assert.Equal(t, tt.status, rec.Code)

			if tt.wantErr {
				require.Len(t, errChan, 1)
				assert.Empty(t, codeChan)
				return
			}
			require.Len(t, codeChan, 1)
			assert.Equal(t, tt.wantCode, <-codeChan)
		})
	}
}

func TestCallbackHandlerStateMismatchSentinel(t *testing.T) {
	errChan := make(chan error, 1)
	h := callbackHandler("abc", make(chan string, 1), errChan)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?state=x", nil))
	assert.True(t, errors.Is(<-errChan, ErrStateMismatch))
}

func TestAthleteID(t *testing.T) {
	token := (&oauth2.Token{AccessToken: "a"}).WithExtra(map[string]interface{}{
		"athlete": map[string]interface{}{"id": float64(1234)},
	})
	assert.Equal(t, int64(1234), athleteID(token))
	assert.Zero(t, athleteID(&oauth2.Token{}))
}

func TestCredentialsOAuthConfig(t *testing.T) {
	cfg := Credentials{ClientID: "id", ClientSecret: "secret"}.OAuthConfig()
	assert.Equal(t, "http://localhost:8089/callback", cfg.RedirectURL)
	assert.Equal(t, StravaEndpoint, cfg.Endpoint)
	assert.Equal(t, []string{"read,activity:read_all"}, cfg.Scopes)
	assert.Contains(t, cfg.AuthCodeURL("s"), "client_id=id")
}

func TestTokenSourceNoRefreshWhileValid(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	token := &oauth2.Token{AccessToken: "live", Expiry: now.Add(time.Hour)}

	refreshed := false
	ts := NewTokenSource(&oauth2.Config{}, token, func(*oauth2.Token) error {
		refreshed = true
		return nil
	})
	clock := timeutil.NewMockClock(now)
	ts.clock = clock

	got, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "live", got.AccessToken)
	assert.False(t, refreshed)
	assert.False(t, ts.IsExpired())

	clock.Advance(59*time.Minute + 30*time.Second)
	assert.True(t, ts.IsExpired(), "inside the refresh buffer")
}
