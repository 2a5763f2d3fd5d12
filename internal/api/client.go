// Package api provides the Gemini Web API client implementation.
package api

import (
	"fmt"
	"sync"

	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/rs/zerolog/log"

	"github.com/diogo/gemchat/internal/config"
	"github.com/diogo/gemchat/internal/models"
)

// Client talks to the Gemini Web API on behalf of one authenticated user.
// Create it with NewClient, then call Init once to fetch the access token
// before starting a chat.
type Client struct {
	httpClient  tls_client.HttpClient
	cookies     *config.Cookies
	accessToken string
	model       models.Model
	mu          sync.RWMutex
	closed      bool
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the default model for the client
func WithModel(model models.Model) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// NewClient creates a new Client authenticated by the given cookies
func NewClient(cookies *config.Cookies, opts ...ClientOption) (*Client, error) {
	if err := config.ValidateCookies(cookies); err != nil {
		return nil, err
	}

	// Chrome profile for browser emulation; long timeout because a streamed
	// reply stays on one connection for its whole duration.
	options := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(300),
		tls_client.WithClientProfile(profiles.Chrome_120),
		tls_client.WithNotFollowRedirects(),
	}

	httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	client := &Client{
		httpClient: httpClient,
		cookies:    cookies,
		model:      models.DefaultModel,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Init fetches the access token. Must be called once before StartChat.
func (c *Client) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("client is closed")
	}

	token, err := GetAccessToken(c.httpClient, c.cookies)
	if err != nil {
		log.Error().Err(err).Str("component", "api").Msg("access token fetch failed")
		return err
	}
	c.accessToken = token

	log.Debug().Str("component", "api").Str("model", c.model.Name).Msg("client initialized")
	return nil
}

// Close shuts down the client
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// GetAccessToken returns the current access token
func (c *Client) GetAccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

// GetCookies returns the current cookies
func (c *Client) GetCookies() *config.Cookies {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cookies
}

// GetModel returns the default model
func (c *Client) GetModel() models.Model {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// SetModel sets the default model
func (c *Client) SetModel(model models.Model) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = model
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// StartChat creates a new chat session bound to this client. The session is
// the only handle the UI layer holds; it is obtained once and reused for
// every send.
func (c *Client) StartChat(model ...models.Model) *ChatSession {
	m := c.GetModel()
	if len(model) > 0 {
		m = model[0]
	}

	return &ChatSession{
		client: c,
		model:  m,
	}
}
