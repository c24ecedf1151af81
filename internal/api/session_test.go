package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksred/tradervolt-migrate/internal/api"
	"github.com/ksred/tradervolt-migrate/internal/mockapi"
)

// memCache is an in-memory TokenCache for session tests
type memCache struct {
	pair *api.TokenPair
}

func (m *memCache) Load() (*api.TokenPair, error) { return m.pair, nil }
func (m *memCache) Save(p *api.TokenPair) error   { m.pair = p; return nil }

func newMockPlatform(t *testing.T) (*httptest.Server, *mockapi.Server) {
	t.Helper()
	server := mockapi.NewServer(mockapi.Config{
		Email:    "admin@example.com",
		Password: "hunter2",
	})
	srv := httptest.NewServer(server.Router())
	t.Cleanup(srv.Close)
	return srv, server
}

func TestSessionLogsIn(t *testing.T) {
	srv, _ := newMockPlatform(t)

	session := api.NewSession(api.SessionConfig{
		BaseURL:     srv.URL,
		Credentials: api.Credentials{Email: "admin@example.com", Password: "hunter2"},
		Logger:      zerolog.Nop(),
	})

	require.NoError(t, session.EnsureAuthenticated(context.Background()))

	token, err := session.Token(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// A held, unexpired token is reused without another login
	again, err := session.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, token, again)
}

func TestSessionRejectsBadCredentials(t *testing.T) {
	srv, _ := newMockPlatform(t)

	session := api.NewSession(api.SessionConfig{
		BaseURL:     srv.URL,
		Credentials: api.Credentials{Email: "admin@example.com", Password: "wrong"},
		Logger:      zerolog.Nop(),
	})

	err := session.EnsureAuthenticated(context.Background())
	require.ErrorIs(t, err, api.ErrAuthenticationFailed)
}

func TestSessionNoCredentials(t *testing.T) {
	session := api.NewSession(api.SessionConfig{
		BaseURL: "http://127.0.0.1:0",
		Logger:  zerolog.Nop(),
	})

	_, err := session.Token(context.Background())
	require.ErrorIs(t, err, api.ErrNoCredentials)
}

func TestSessionUsesCachedToken(t *testing.T) {
	cache := &memCache{pair: &api.TokenPair{
		AccessToken:          "cached-token",
		AccessTokenExpiresAt: api.APITime{Time: time.Now().Add(time.Hour)},
	}}

	// No credentials and an unreachable base URL: the cached pair must carry
	session := api.NewSession(api.SessionConfig{
		BaseURL: "http://127.0.0.1:0",
		Cache:   cache,
		Logger:  zerolog.Nop(),
	})

	token, err := session.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cached-token", token)
}

func TestSessionExpiryBuffer(t *testing.T) {
	srv, _ := newMockPlatform(t)

	// Token nominally valid for another 30 seconds, inside the safety buffer
	cache := &memCache{pair: &api.TokenPair{
		AccessToken:          "nearly-expired",
		AccessTokenExpiresAt: api.APITime{Time: time.Now().Add(30 * time.Second)},
	}}

	session := api.NewSession(api.SessionConfig{
		BaseURL:     srv.URL,
		Credentials: api.Credentials{Email: "admin@example.com", Password: "hunter2"},
		Cache:       cache,
		Logger:      zerolog.Nop(),
	})

	token, err := session.Token(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, "nearly-expired", token)
}

func TestSessionRefreshesWithoutCredentials(t *testing.T) {
	srv, _ := newMockPlatform(t)

	// Obtain a real pair by logging in once
	cache := &memCache{}
	login := api.NewSession(api.SessionConfig{
		BaseURL:     srv.URL,
		Credentials: api.Credentials{Email: "admin@example.com", Password: "hunter2"},
		Cache:       cache,
		Logger:      zerolog.Nop(),
	})
	require.NoError(t, login.EnsureAuthenticated(context.Background()))
	require.NotNil(t, cache.pair)

	// Expire the cached access token; the refresh token is still good
	cache.pair.AccessTokenExpiresAt = api.APITime{Time: time.Now().Add(-time.Hour)}

	// No credentials: the only way forward is a refresh
	session := api.NewSession(api.SessionConfig{
		BaseURL: srv.URL,
		Cache:   cache,
		Logger:  zerolog.Nop(),
	})

	token, err := session.Token(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// The refreshed pair was persisted back to the cache with a live expiry
	require.NotNil(t, cache.pair)
	assert.True(t, cache.pair.AccessTokenExpiresAt.After(time.Now()))
}

func TestSessionFallsBackToStaleToken(t *testing.T) {
	cache := &memCache{pair: &api.TokenPair{
		AccessToken:          "stale-token",
		AccessTokenExpiresAt: api.APITime{Time: time.Now().Add(-time.Hour)},
	}}

	// Expired token, no refresh token, no credentials: hand the server the
	// stale token and let it decide.
	session := api.NewSession(api.SessionConfig{
		BaseURL: "http://127.0.0.1:0",
		Cache:   cache,
		Logger:  zerolog.Nop(),
	})

	token, err := session.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stale-token", token)
}

func TestClientRefreshesTokenMidRun(t *testing.T) {
	// Access tokens live 30 seconds, inside the session's safety buffer, so
	// every request after login finds its token already expired.
	server := mockapi.NewServer(mockapi.Config{
		Email:     "admin@example.com",
		Password:  "hunter2",
		AccessTTL: 30 * time.Second,
	})

	var logins atomic.Int32
	router := server.Router()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/users/login" {
			logins.Add(1)
		}
		router.ServeHTTP(w, r)
	}))
	defer srv.Close()

	client := api.NewClient(api.ClientConfig{
		BaseURL:     srv.URL,
		Credentials: api.Credentials{Email: "admin@example.com", Password: "hunter2"},
		RateLimit:   1000,
		MaxRetries:  1,
		BackoffBase: time.Millisecond,
		Logger:      zerolog.Nop(),
	})

	ctx := context.Background()
	require.NoError(t, client.Session.EnsureAuthenticated(ctx))
	require.Equal(t, int32(1), logins.Load())

	// Mid-run the token expires; the transport's per-attempt token fetch
	// rides the refresh path and the requests keep working.
	for i := 0; i < 2; i++ {
		status, _, err := client.Transport.Send(ctx, http.MethodGet, "/api/v1/symbols", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, status)
	}

	// Refreshed, never logged in again
	assert.Equal(t, int32(1), logins.Load())
}

func TestSessionReadsExpiryFromJWT(t *testing.T) {
	// A deployment that omits accessTokenExpiresAt: the session falls back
	// to the exp claim inside the token.
	claims := jwt.MapClaims{"exp": jwt.NewNumericDate(time.Now().Add(time.Hour))}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("whatever"))
	require.NoError(t, err)

	var logins atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logins.Add(1)
		json.NewEncoder(w).Encode(map[string]any{"accessToken": signed})
	}))
	defer srv.Close()

	session := api.NewSession(api.SessionConfig{
		BaseURL:     srv.URL,
		Credentials: api.Credentials{Email: "admin@example.com", Password: "hunter2"},
		Logger:      zerolog.Nop(),
	})

	token, err := session.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, signed, token)

	// The derived expiry keeps the token fresh; no second login
	_, err = session.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), logins.Load())
}
