// Package submit sends a validated batch to the catalog server's bulk
// upload endpoint.
package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/bookimport/internal/catalog"
	"github.com/JonMunkholm/bookimport/internal/csrf"
)

// DefaultUploadPath is the catalog server's bulk endpoint.
const DefaultUploadPath = "/panel/editor/fichas/upload-json/"

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 4 << 20

// ErrNotJSON is returned when the server answers with something other than
// a JSON document (typically an HTML error page).
var ErrNotJSON = errors.New("response is not JSON")

// Reply is a decoded server answer.
type Reply struct {
	StatusCode int
	Body       Response
}

// Success reports whether the status code is 2xx.
func (r *Reply) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Submitter sends one batch. Implemented by *Client; tests substitute fakes.
type Submitter interface {
	Submit(ctx context.Context, rows []catalog.Row) (*Reply, error)
}

// Client posts batches as {"rows": [...]}.
type Client struct {
	httpClient *http.Client
	url        string
	tokens     csrf.Source
	cookie     *http.Cookie
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithTokenSource sets where the X-CSRFToken value comes from.
func WithTokenSource(s csrf.Source) Option {
	return func(cl *Client) { cl.tokens = s }
}

// WithSessionCookie attaches an authenticated session cookie to every request.
func WithSessionCookie(name, value string) Option {
	return func(cl *Client) {
		if name != "" && value != "" {
			cl.cookie = &http.Cookie{Name: name, Value: value}
		}
	}
}

// WithLogger sets the logger used for token lookup failures.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// NewClient returns a client for the given upload URL.
func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		url:        url,
		tokens:     csrf.Chain{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type payload struct {
	Rows []catalog.Row `json:"rows"`
}

// Submit performs exactly one POST. Network failures and non-JSON bodies are
// returned as errors; any JSON answer, whatever its status, is a Reply.
func (c *Client) Submit(ctx context.Context, rows []catalog.Row) (*Reply, error) {
	if rows == nil {
		rows = []catalog.Row{}
	}
	body, err := json.Marshal(payload{Rows: rows})
	if err != nil {
		return nil, fmt.Errorf("encode rows: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	token, err := c.tokens.Token(ctx)
	if err != nil {
		c.logger.Warn("csrf token lookup failed", "error", err)
	}
	req.Header.Set(csrf.HeaderName, token)
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post rows: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if !isJSON(resp.Header.Get("Content-Type")) {
		return nil, fmt.Errorf("status %d: %w", resp.StatusCode, ErrNotJSON)
	}

	reply := &Reply{StatusCode: resp.StatusCode}
	if len(bytes.TrimSpace(raw)) == 0 {
		return reply, nil
	}
	if err := json.Unmarshal(raw, &reply.Body); err != nil {
		return nil, fmt.Errorf("decode response: %w", errors.Join(ErrNotJSON, err))
	}
	return reply, nil
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}
