package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	defaultRequestTimeout = 30 * time.Second
	defaultRateLimit      = 1.0 // requests per second
	defaultMaxRetries     = 3
	defaultBackoffBase    = 1 * time.Second
)

// Statuses retried automatically, matching the remote platform's documented
// throttling and transient failure modes.
var retryableStatuses = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// TokenSource supplies a valid bearer token for outgoing requests
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TransportConfig configures a Transport. Zero values fall back to the
// defaults above.
type TransportConfig struct {
	BaseURL     string
	Tokens      TokenSource
	HTTPClient  *http.Client
	RateLimit   float64
	MaxRetries  uint64
	BackoffBase time.Duration
	Logger      zerolog.Logger
}

// Transport issues HTTP requests against the remote API no faster than the
// configured rate, retries transient failures with exponential backoff, and
// injects the current bearer token on every attempt.
//
// Non-idempotent verbs (POST, DELETE, PUT) are retried under the same policy
// as reads. This deliberately assumes the remote API rejects duplicate
// creates with 409 rather than double-applying them; a retried POST whose
// first attempt actually landed surfaces as a conflict, not a duplicate row.
type Transport struct {
	baseURL     string
	httpClient  *http.Client
	limiter     *rate.Limiter
	tokens      TokenSource
	maxRetries  uint64
	backoffBase time.Duration
	log         zerolog.Logger
}

// NewTransport creates a Transport with the given configuration
func NewTransport(cfg TransportConfig) *Transport {
	rateLimit := cfg.RateLimit
	if rateLimit <= 0 {
		rateLimit = defaultRateLimit
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = defaultMaxRetries
	}
	backoffBase := cfg.BackoffBase
	if backoffBase <= 0 {
		backoffBase = defaultBackoffBase
	}

	return &Transport{
		baseURL:     cfg.BaseURL,
		httpClient:  httpClient,
		limiter:     rate.NewLimiter(rate.Limit(rateLimit), 1),
		tokens:      cfg.Tokens,
		maxRetries:  maxRetries,
		backoffBase: backoffBase,
		log:         cfg.Logger.With().Str("component", "transport").Logger(),
	}
}

// statusError marks a retryable HTTP status inside the retry loop
type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("retryable status %d", e.status)
}

// Send issues a request and returns the final status code and response body.
// The caller blocks until the rate limiter grants a slot; retries count as
// requests and are rate limited too. When the retry budget is exhausted on a
// retryable status, the last status and body are returned with a nil error
// so callers can report what the server actually said.
func (t *Transport) Send(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	var lastStatus int
	var lastBody []byte

	operation := func() error {
		if err := t.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		status, respBody, err := t.attempt(ctx, method, path, payload)
		if err != nil {
			if errors.Is(err, ErrNoCredentials) || errors.Is(err, ErrAuthenticationFailed) {
				return backoff.Permanent(err)
			}
			// Connection-level failure, retry
			return err
		}

		lastStatus = status
		lastBody = respBody

		if retryableStatuses[status] {
			return &statusError{status: status}
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = t.backoffBase
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, t.maxRetries), ctx))
	if err != nil {
		var se *statusError
		if errors.As(err, &se) {
			// Retry budget exhausted on an HTTP status: surface it
			t.log.Warn().Int("status", se.status).Str("method", method).Str("path", path).
				Msg("retry budget exhausted")
			return lastStatus, lastBody, nil
		}
		return 0, nil, err
	}

	return lastStatus, lastBody, nil
}

// attempt performs a single HTTP request
func (t *Transport) attempt(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	// Token is fetched per attempt so an expiry mid-run triggers a
	// transparent refresh on the next try.
	if t.tokens != nil {
		token, err := t.tokens.Token(ctx)
		if err != nil {
			return 0, nil, err
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	t.log.Debug().Str("method", method).Str("path", path).Msg("sending request")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	t.log.Debug().Int("status", resp.StatusCode).Str("path", path).Msg("received response")

	return resp.StatusCode, respBody, nil
}
