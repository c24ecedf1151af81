package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ClientConfig configures a client context
type ClientConfig struct {
	BaseURL     string
	Credentials Credentials
	TokenCache  TokenCache
	RateLimit   float64
	MaxRetries  uint64
	BackoffBase time.Duration
	Timeout     time.Duration
	Logger      zerolog.Logger
}

// Client is the explicit client context for one migration run: it owns the
// Session, the Transport and the Gateway, with no ambient globals. Construct
// one per run and let it go out of scope when the run ends.
type Client struct {
	Session   *Session
	Transport *Transport
	Gateway   *Gateway
}

// NewClient wires a Session, Transport and Gateway together
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	httpClient := &http.Client{Timeout: timeout}

	session := NewSession(SessionConfig{
		BaseURL:     cfg.BaseURL,
		Credentials: cfg.Credentials,
		Cache:       cfg.TokenCache,
		HTTPClient:  httpClient,
		Logger:      cfg.Logger,
	})

	transport := NewTransport(TransportConfig{
		BaseURL:     cfg.BaseURL,
		Tokens:      session,
		HTTPClient:  httpClient,
		RateLimit:   cfg.RateLimit,
		MaxRetries:  cfg.MaxRetries,
		BackoffBase: cfg.BackoffBase,
		Logger:      cfg.Logger,
	})

	return &Client{
		Session:   session,
		Transport: transport,
		Gateway:   NewGateway(transport, cfg.Logger),
	}
}
