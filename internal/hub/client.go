package hub

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/valhub-labs/valhub/internal/manifest"
)

var (
	// ErrManifestNotFound is returned when the hub has no manifest for an id.
	ErrManifestNotFound = errors.New("validator manifest not found")

	// ErrUnauthorized is returned when the hub rejects the configured token.
	ErrUnauthorized = errors.New("hub rejected credentials")

	// ErrUpstream marks transient hub failures: transport errors, 429 and
	// 5xx responses. Only these are retried.
	ErrUpstream = errors.New("hub service unavailable")
)

// Resolver maps a validator id to its manifest.
type Resolver interface {
	FetchManifest(ctx context.Context, id string) (*manifest.Manifest, error)
}

// Client fetches manifests from the hub's HTTP API.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
	maxRetries uint64
	baseDelay  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(cl *Client) {
		cl.token = token
	}
}

// WithMaxRetries sets how many times a transient failure is retried.
func WithMaxRetries(n uint64) Option {
	return func(cl *Client) {
		cl.maxRetries = n
	}
}

// WithBaseDelay sets the initial backoff interval.
func WithBaseDelay(d time.Duration) Option {
	return func(cl *Client) {
		cl.baseDelay = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

// NewClient creates a Client for the hub at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		userAgent:  "valhub",
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: 3,
		baseDelay:  500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchManifest downloads and validates the manifest for id ("namespace/name").
// 404 maps to ErrManifestNotFound and 401/403 to ErrUnauthorized; 429 and
// 5xx responses are retried.
func (c *Client) FetchManifest(ctx context.Context, id string) (*manifest.Manifest, error) {
	url := fmt.Sprintf("%s/validator-manifests/%s", c.baseURL, id)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.baseDelay
	policy := backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx)

	var body []byte
	err := backoff.Retry(func() error {
		data, err := c.get(ctx, url)
		if err == nil {
			body = data
			return nil
		}
		if errors.Is(err, ErrUpstream) {
			return err
		}
		return backoff.Permanent(err)
	}, policy)
	if err != nil {
		return nil, fmt.Errorf("fetching manifest for %s: %w", URI(id), err)
	}

	m, err := manifest.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("manifest for %s: %w", URI(id), err)
	}
	return m, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrManifestNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w (status %d)", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w (status %d)", ErrUpstream, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("hub returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}
