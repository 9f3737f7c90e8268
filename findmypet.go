package findmypet

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the development backend address.
	DefaultBaseURL = "http://localhost:5001/api"
	// DefaultTimeout bounds every request. A timeout surfaces the same
	// way as an unreachable server.
	DefaultTimeout = 15 * time.Second
	// probeTimeout bounds the pre-flight reachability check before
	// mutations; a probe that cannot answer quickly counts as down.
	probeTimeout = 5 * time.Second
)

// Client is the FindMyPet API client.
//
// Use NewClient to construct one:
//
//	client := findmypet.NewClient(
//		findmypet.WithBaseURL("https://api.findmypet.example"),
//		findmypet.WithTokenStore(findmypet.NewFileTokenStore(home)),
//	)
//	if err := client.Initialize(ctx); err != nil { ... }
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	session    *Session

	// Services
	Auth *AuthService
	Pets *PetsService
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL sets a custom API base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if c.httpClient == nil {
			c.httpClient = &http.Client{}
		}
		c.httpClient.Timeout = timeout
	}
}

// WithLogger sets a structured logger. Requests and responses are logged at
// debug level. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTokenStore sets where the session token is persisted. The default is
// an in-memory store that does not survive the process.
func WithTokenStore(store TokenStore) Option {
	return func(c *Client) {
		c.session = NewSession(store)
	}
}

// NewClient creates a new FindMyPet API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger:  zap.NewNop(),
		session: NewSession(NewMemoryTokenStore()),
	}

	for _, opt := range opts {
		opt(c)
	}

	// Initialize services
	c.Auth = &AuthService{client: c}
	c.Pets = &PetsService{client: c}

	return c
}

// BaseURL returns the current base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Session exposes the client's session state.
func (c *Client) Session() *Session {
	return c.session
}

// Initialize hydrates the session from the persisted token. With no stored
// token it returns immediately. With one, it fetches the profile; an auth
// rejection means the token is stale, so the session self-clears and
// Initialize reports success with a logged-out session. Any other fetch
// failure keeps the token (authenticated, profile not loaded) and is
// returned for the caller to log or ignore.
func (c *Client) Initialize(ctx context.Context) error {
	token, err := c.session.hydrate()
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}
	defer c.session.setLoading(false)

	if _, err := c.Auth.Profile(ctx); err != nil {
		if apiErr, ok := AsError(err); ok && apiErr.IsAuthenticationRequired() {
			// The request layer already tore the session down.
			c.logger.Warn("stored token rejected, logged out")
			return nil
		}
		c.logger.Debug("profile fetch failed during init", zap.Error(err))
		return err
	}
	return nil
}
