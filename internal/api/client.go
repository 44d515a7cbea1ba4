package api

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/zaril/internal/errors"
	"github.com/diogo/zaril/internal/models"
)

// maxErrorBody bounds how much of an error response is kept for diagnostics
const maxErrorBody = 4096

// ClientInterface is the surface of Client used by commands and views
type ClientInterface interface {
	StreamChat(ctx context.Context, messages []models.Message) (FragmentStream, error)
	Complete(ctx context.Context, messages []models.Message) (string, error)
	ListModels(ctx context.Context) ([]string, error)
	GetModel() models.Model
	SetModel(model models.Model)
	Close()
}

// Client talks to the chat completions API
type Client struct {
	httpClient     tls_client.HttpClient
	apiKey         string
	baseURL        string
	model          models.Model
	timeoutSeconds int
	logger         *log.Logger
	verbose        bool
	mu             sync.RWMutex
	closed         bool
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithModel sets the model used for completions
func WithModel(model models.Model) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// WithBaseURL points the client at another OpenAI-compatible server
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTimeoutSeconds bounds a whole request including its stream. 0 means no bound.
func WithTimeoutSeconds(seconds int) ClientOption {
	return func(c *Client) {
		c.timeoutSeconds = seconds
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient tls_client.HttpClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger used for verbose request logging
func WithLogger(logger *log.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithVerbose enables request/response logging
func WithVerbose(enabled bool) ClientOption {
	return func(c *Client) {
		c.verbose = enabled
	}
}

// NewClient creates a new Client
func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, apierrors.ErrNoAPIKey
	}

	client := &Client{
		apiKey:         apiKey,
		baseURL:        models.DefaultBaseURL,
		model:          models.DefaultModel,
		timeoutSeconds: 300,
		logger:         log.Default(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(client.timeoutSeconds),
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithNotFollowRedirects(),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// Close releases idle connections. Further requests fail.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.httpClient.CloseIdleConnections()
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// GetModel returns the completion model
func (c *Client) GetModel() models.Model {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// SetModel sets the completion model
func (c *Client) SetModel(model models.Model) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = model
}

// BaseURL returns the API base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListModels returns the ids of the models the service offers
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	endpoint := c.baseURL + models.PathModels

	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil, models.DefaultHeaders())
	if err != nil {
		return nil, err
	}

	body, err := c.do(req, "list models", endpoint)
	if err != nil {
		return nil, err
	}

	if !gjson.ValidBytes(body) {
		return nil, apierrors.NewParseError("response is not valid JSON", endpoint)
	}

	var ids []string
	for _, id := range gjson.GetBytes(body, PathModelIDs).Array() {
		if s := id.String(); s != "" {
			ids = append(ids, s)
		}
	}
	return ids, nil
}

// newRequest builds an authenticated request
func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader, headers map[string]string) (*http.Request, error) {
	if c.IsClosed() {
		return nil, fmt.Errorf("client is closed")
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	return req, nil
}

// send performs req and converts transport failures and non-success
// statuses into typed errors. On success the caller owns resp.Body.
func (c *Client) send(req *http.Request, operation, endpoint string) (*http.Response, error) {
	start := time.Now()
	c.logRequest(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apierrors.FromTransport(operation, endpoint, err)
	}
	c.logResponse(resp, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		message := gjson.GetBytes(errorBody, PathErrorMessage).String()
		if message == "" {
			message = operation + " failed"
		}
		return nil, apierrors.NewStatusError(resp.StatusCode, endpoint, message, string(errorBody))
	}

	return resp, nil
}

// do performs req and reads the whole response body
func (c *Client) do(req *http.Request, operation, endpoint string) ([]byte, error) {
	resp, err := c.send(req, operation, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierrors.FromTransport(operation, endpoint, err)
	}
	return body, nil
}

// logRequest logs the method and path only; headers carry the API key.
func (c *Client) logRequest(req *http.Request) {
	if !c.verbose {
		return
	}
	c.logger.Printf("API Request: %s %s", req.Method, req.URL.Path)
}

func (c *Client) logResponse(resp *http.Response, duration time.Duration) {
	if !c.verbose {
		return
	}
	c.logger.Printf("API Response: %d (%v)", resp.StatusCode, duration.Round(time.Millisecond))
}

var _ ClientInterface = (*Client)(nil)
