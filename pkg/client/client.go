package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/graphsock/graphsock/pkg/logging"
	"github.com/graphsock/graphsock/pkg/operation"
)

// DefaultAuthHeader is the header the auth token is sent in unless the
// caller picks another one.
const DefaultAuthHeader = "Authorization"

const (
	defaultAttempts = 3
	defaultBackoff  = time.Second
	defaultTimeout  = 30 * time.Second
)

// Client posts GraphQL operations to one HTTP endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	timeout    time.Duration
	attempts   int
	backoff    time.Duration
	log        *slog.Logger

	authToken  string
	authHeader string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request HTTP timeout. It applies after all
// options run, so it composes with WithHTTPClient in either order.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithRetries sets how many attempts Execute makes while the response
// status is not 2xx.
func WithRetries(attempts int) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
	}
}

// WithBackoff sets the fixed pause between attempts.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) {
		c.backoff = d
	}
}

// WithAuthorization sets the auth token and the header it travels in at
// construction time. Empty headerName means DefaultAuthHeader.
func WithAuthorization(token, headerName string) Option {
	return func(c *Client) {
		c.authToken = token
		if headerName == "" {
			headerName = DefaultAuthHeader
		}
		c.authHeader = headerName
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a client for the endpoint.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		attempts:   defaultAttempts,
		backoff:    defaultBackoff,
		log:        logging.Nop(),
		authHeader: DefaultAuthHeader,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		c.httpClient.Timeout = c.timeout
	}
	return c
}

// InjectToken sets the auth token after construction. The optional second
// argument overrides the header name. Kept for call-site parity with
// clients that configure auth late; prefer WithAuthorization.
func (c *Client) InjectToken(token string, headerName ...string) {
	c.authToken = token
	if len(headerName) > 0 && headerName[0] != "" {
		c.authHeader = headerName[0]
	}
}

// request is the JSON body of a GraphQL POST.
type request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName,omitempty"`
}

// GraphQLError is one entry of a response's errors array.
type GraphQLError struct {
	Message    string                 `json:"message"`
	Path       []interface{}          `json:"path,omitempty"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

func (e *GraphQLError) Error() string {
	return e.Message
}

// Response is a parsed GraphQL HTTP reply plus the status it arrived
// with. A non-2xx StatusCode after exhausted retries is returned here,
// not as an error.
type Response struct {
	StatusCode int
	Data       json.RawMessage
	Errors     []GraphQLError
	Raw        []byte
}

// OK reports whether the HTTP status was 2xx.
func (r *Response) OK() bool {
	return r.StatusCode/100 == 2
}

// Err folds the errors array into a single error, nil when there is none.
func (r *Response) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	msg := r.Errors[0].Message
	if n := len(r.Errors); n > 1 {
		msg = fmt.Sprintf("%s (and %d more)", msg, n-1)
	}
	return fmt.Errorf("graphql: %s", msg)
}

// DecodeData unmarshals the data field into v.
func (r *Response) DecodeData(v interface{}) error {
	if len(r.Data) == 0 {
		return fmt.Errorf("response has no data")
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// Execute posts the operation and returns the parsed reply. While the
// status is not 2xx it retries with a fixed backoff; once the attempts
// are exhausted the last reply is returned as-is for inspection. A
// transport-level failure is returned as an error.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]interface{}) (*Response, error) {
	body := request{Query: query, Variables: variables}
	if info, err := operation.Inspect(query); err == nil {
		body.OperationName = info.Name
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	var resp *Response
	for attempt := 1; attempt <= c.attempts; attempt++ {
		resp, err = c.post(ctx, payload)
		if err != nil {
			// Network-level failure, not a bad status.
			c.log.Error("request failed", "endpoint", c.endpoint, "attempt", attempt, "error", err)
			return nil, err
		}
		if resp.OK() {
			return resp, nil
		}

		c.log.Warn("non-success status", "status", resp.StatusCode, "attempt", attempt, "of", c.attempts)
		if attempt < c.attempts {
			select {
			case <-time.After(c.backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, payload []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set(c.authHeader, c.authToken)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", c.endpoint, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	resp := &Response{StatusCode: httpResp.StatusCode, Raw: raw}

	// Parse best-effort: error pages on non-2xx statuses are often not
	// JSON at all.
	var parsed struct {
		Data   json.RawMessage `json:"data"`
		Errors []GraphQLError  `json:"errors"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		if resp.OK() {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return resp, nil
	}
	resp.Data = parsed.Data
	resp.Errors = parsed.Errors
	return resp, nil
}
