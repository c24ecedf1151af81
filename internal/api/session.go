package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

var (
	ErrNoCredentials        = errors.New("no credentials configured")
	ErrAuthenticationFailed = errors.New("authentication failed")
)

// A token expiring within this window is treated as already expired, to
// avoid racing a request against expiry.
const tokenExpiryBuffer = 60 * time.Second

const (
	loginPath   = "/api/v1/users/login"
	refreshPath = "/api/v1/users/refresh_token"
)

// Credentials are the operator-supplied login details. They are never
// logged.
type Credentials struct {
	Email    string
	Password string
}

// TokenPair holds an access/refresh token pair with expiry instants, in the
// shape returned by the login and refresh endpoints and persisted by the
// token cache.
type TokenPair struct {
	AccessToken           string  `json:"accessToken"`
	RefreshToken          string  `json:"refreshToken,omitempty"`
	AccessTokenExpiresAt  APITime `json:"accessTokenExpiresAt,omitempty"`
	RefreshTokenExpiresAt APITime `json:"refreshTokenExpiresAt,omitempty"`
}

// TokenCache persists a token pair between runs. Load returns (nil, nil)
// when no cached pair exists.
type TokenCache interface {
	Load() (*TokenPair, error)
	Save(pair *TokenPair) error
}

// SessionConfig configures a Session
type SessionConfig struct {
	BaseURL     string
	Credentials Credentials
	Cache       TokenCache
	HTTPClient  *http.Client
	Logger      zerolog.Logger
	Now         func() time.Time
}

// Session owns the authenticated session with the remote platform: login,
// token caching, expiry tracking and transparent refresh. It is the
// TokenSource for the Transport. Refresh and login run under the session
// mutex so no caller ever reads a token mid-refresh.
type Session struct {
	mu           sync.Mutex
	baseURL      string
	creds        Credentials
	cache        TokenCache
	httpClient   *http.Client
	log          zerolog.Logger
	now          func() time.Time
	pair         *TokenPair
	cacheChecked bool
}

// NewSession creates a Session with the given configuration
func NewSession(cfg SessionConfig) *Session {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Session{
		baseURL:    cfg.BaseURL,
		creds:      cfg.Credentials,
		cache:      cfg.Cache,
		httpClient: httpClient,
		log:        cfg.Logger.With().Str("component", "session").Logger(),
		now:        now,
	}
}

// EnsureAuthenticated makes sure a usable access token is held, walking the
// fallback chain: held token, cached pair, silent refresh, full login. Only
// the terminal login failure is reported; earlier steps fall through.
func (s *Session) EnsureAuthenticated(ctx context.Context) error {
	_, err := s.Token(ctx)
	return err
}

// Token returns a valid bearer token, authenticating first if necessary
func (s *Session) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Fast path: a held, unexpired token needs no network call
	if s.tokenValidLocked() {
		return s.pair.AccessToken, nil
	}

	// Adopt a previously cached pair
	if !s.cacheChecked && s.cache != nil {
		s.cacheChecked = true
		pair, err := s.cache.Load()
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to load cached tokens")
		} else if pair != nil && pair.AccessToken != "" {
			s.pair = pair
			s.log.Info().Msg("loaded cached token pair")
			if s.tokenValidLocked() {
				return s.pair.AccessToken, nil
			}
		}
	}

	// Silent refresh with the held refresh token
	if s.refreshUsableLocked() {
		if err := s.refreshLocked(ctx); err != nil {
			s.log.Warn().Err(err).Msg("token refresh failed, falling back to login")
		} else {
			s.persistLocked()
			return s.pair.AccessToken, nil
		}
	}

	// Full login
	if s.creds.Email == "" || s.creds.Password == "" {
		if token := s.staleTokenLocked(); token != "" {
			s.log.Warn().Msg("no credentials configured, using potentially expired token")
			return token, nil
		}
		return "", ErrNoCredentials
	}

	if err := s.loginLocked(ctx); err != nil {
		if token := s.staleTokenLocked(); token != "" {
			s.log.Warn().Err(err).Msg("login failed, using potentially expired token")
			return token, nil
		}
		return "", fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}

	s.persistLocked()
	return s.pair.AccessToken, nil
}

// tokenValidLocked reports whether the held access token is safe to use.
// A missing expiry counts as expired.
func (s *Session) tokenValidLocked() bool {
	if s.pair == nil || s.pair.AccessToken == "" {
		return false
	}
	expiry := s.pair.AccessTokenExpiresAt.Time
	if expiry.IsZero() {
		return false
	}
	return expiry.After(s.now().Add(tokenExpiryBuffer))
}

// refreshUsableLocked reports whether a refresh attempt is worthwhile
func (s *Session) refreshUsableLocked() bool {
	if s.pair == nil || s.pair.RefreshToken == "" {
		return false
	}
	expiry := s.pair.RefreshTokenExpiresAt.Time
	if expiry.IsZero() {
		// Unknown refresh expiry: let the server decide
		return true
	}
	return expiry.After(s.now().Add(tokenExpiryBuffer))
}

// staleTokenLocked returns the held token even if expired. The server gets
// the final say on whether it is still usable.
func (s *Session) staleTokenLocked() string {
	if s.pair == nil {
		return ""
	}
	return s.pair.AccessToken
}

func (s *Session) refreshLocked(ctx context.Context) error {
	pair, err := s.authRequest(ctx, refreshPath, map[string]any{
		"refreshToken": s.pair.RefreshToken,
	})
	if err != nil {
		return err
	}
	if pair.RefreshToken == "" {
		pair.RefreshToken = s.pair.RefreshToken
		pair.RefreshTokenExpiresAt = s.pair.RefreshTokenExpiresAt
	}
	s.pair = pair
	s.log.Info().Time("expires_at", pair.AccessTokenExpiresAt.Time).Msg("refreshed access token")
	return nil
}

func (s *Session) loginLocked(ctx context.Context) error {
	pair, err := s.authRequest(ctx, loginPath, map[string]any{
		"username":   s.creds.Email,
		"password":   s.creds.Password,
		"rememberMe": true,
	})
	if err != nil {
		return err
	}
	s.pair = pair
	s.log.Info().Time("expires_at", pair.AccessTokenExpiresAt.Time).Msg("logged in")
	return nil
}

// authRequest posts to a login/refresh endpoint and decodes the token pair.
// Auth calls bypass the Transport: they must not recurse into the token
// source, and the remote does not rate limit the auth endpoints.
func (s *Session) authRequest(ctx context.Context, path string, body map[string]any) (*TokenPair, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var pair TokenPair
	if err := json.Unmarshal(data, &pair); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if pair.AccessToken == "" {
		return nil, errors.New("auth response carried no access token")
	}
	if pair.AccessTokenExpiresAt.IsZero() {
		// Some deployments omit the expiry field; fall back to the exp
		// claim inside the JWT itself.
		if exp, ok := jwtExpiry(pair.AccessToken); ok {
			pair.AccessTokenExpiresAt = APITime{Time: exp}
		}
	}
	return &pair, nil
}

func (s *Session) persistLocked() {
	if s.cache == nil || s.pair == nil {
		return
	}
	if err := s.cache.Save(s.pair); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist token pair")
	}
}

// jwtExpiry extracts the exp claim from an access token without verifying
// the signature. The session only needs the instant, not trust.
func jwtExpiry(token string) (time.Time, bool) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
