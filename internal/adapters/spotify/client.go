package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/ewilliams-labs/soundmetrics/internal/core/domain"
	"github.com/ewilliams-labs/soundmetrics/internal/core/ports"
)

const (
	// DefaultBaseURL is the Spotify Web API root.
	DefaultBaseURL = "https://api.spotify.com/v1"
	// DefaultTokenURL issues client-credentials tokens.
	DefaultTokenURL = "https://accounts.spotify.com/api/token"

	defaultMarket = "US"
)

// Client is an HTTP client for the Spotify adapter.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	market      string
	maxRetries  int
	baseBackoff time.Duration
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// compile-time interface assertion
var _ ports.CatalogProvider = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithMarket sets the market used for top tracks.
func WithMarket(market string) Option {
	return func(c *Client) {
		if market != "" {
			c.market = market
		}
	}
}

// WithRetry sets the attempt budget and base backoff.
func WithRetry(maxRetries int, baseBackoff time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.baseBackoff = baseBackoff
	}
}

// WithRateLimit caps outbound requests per second with a burst of one.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithLogger sets the adapter logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient constructs a new Spotify client. httpClient must already attach
// credentials; see NewCredentialsHTTPClient.
func NewClient(httpClient *http.Client, baseURL string, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	maxRetries, backoff := getRetryConfig()
	c := &Client{
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(baseURL, "/"),
		market:      defaultMarket,
		maxRetries:  maxRetries,
		baseBackoff: backoff,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Credentials configures the client-credentials grant.
type Credentials struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Timeout      time.Duration
}

// ErrMissingCredentials is returned when the client id or secret is empty.
var ErrMissingCredentials = errors.New("spotify adapter: client id and secret are required")

// NewCredentialsHTTPClient returns an http.Client that fetches and refreshes
// app tokens. ctx scopes token requests and must outlive the client.
func NewCredentialsHTTPClient(ctx context.Context, creds Credentials) (*http.Client, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}
	tokenURL := creds.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	timeout := creds.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	cfg := clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     tokenURL,
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: timeout})
	hc := cfg.Client(ctx)
	hc.Timeout = timeout
	return hc, nil
}

func (c *Client) log() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

func (c *Client) endpoint(path string, params url.Values) (*url.URL, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}
	return u, nil
}

// getJSON issues a GET with retries and decodes a 200 body into out. Every
// failure comes back as *domain.UpstreamError.
func (c *Client) getJSON(ctx context.Context, op string, path string, params url.Values, out any) error {
	op = "spotify adapter: " + op
	u, err := c.endpoint(path, params)
	if err != nil {
		return &domain.UpstreamError{Op: op, Err: err}
	}

	c.log().Debug("spotify adapter: request", "op", op, "url", u.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return &domain.UpstreamError{Op: op, Err: err}
	}

	start := time.Now()
	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		ue := &domain.UpstreamError{Op: op, Err: err}
		var se *statusError
		if errors.As(err, &se) {
			ue.Status = se.status
		}
		return ue
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &domain.UpstreamError{Op: op, Status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.UpstreamError{Op: op, Err: fmt.Errorf("decode error after %s: %w", time.Since(start).Round(time.Millisecond), err)}
	}
	return nil
}

// Ping checks that credentials work with a minimal search.
func (c *Client) Ping(ctx context.Context) error {
	params := url.Values{}
	params.Set("q", "test")
	params.Set("type", "artist")
	params.Set("limit", "1")
	var body artistSearchResponse
	return c.getJSON(ctx, "ping", "/search", params, &body)
}
