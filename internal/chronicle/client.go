// Package chronicle is a small client for the Google SecOps (Chronicle) REST API:
// it fetches feed definitions and imports log entries for a log type.
package chronicle

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// Client talks to one Chronicle instance. It is not safe for concurrent use.
type Client struct {
	target     Target
	baseURL    string
	tokens     oauth2.TokenSource
	httpClient *http.Client
	log        zerolog.Logger

	// bearer is fetched once and reused for every request.
	bearer string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL replaces the regional endpoint, e.g. for a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient sets the HTTP client. The default has no timeout.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpClient = h
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a Client for target. Tokens are taken from ts; use
// gcp.TokenSource for Application Default Credentials or
// oauth2.StaticTokenSource for a fixed token.
func NewClient(target Target, ts oauth2.TokenSource, opts ...Option) *Client {
	c := &Client{
		target:     target,
		baseURL:    DefaultBaseURL(target.Location),
		tokens:     ts,
		httpClient: &http.Client{},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Target returns the instance the client is bound to.
func (c *Client) Target() Target {
	return c.target
}

// Response is a raw HTTP response. A non-2xx status is not an error of the
// call that produced it; use Err to classify it.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte

	op string
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Err returns nil for a 2xx response and a KindAPI *Error otherwise. The
// message is taken from the Google error body when it has one.
func (r *Response) Err() error {
	if r.OK() {
		return nil
	}
	res := &http.Response{
		StatusCode: r.StatusCode,
		Header:     r.Header,
		Body:       io.NopCloser(bytes.NewReader(r.Body)),
	}
	apiErr := &Error{Kind: KindAPI, Op: r.op, StatusCode: r.StatusCode}

	var gerr *googleapi.Error
	if err := googleapi.CheckResponse(res); errors.As(err, &gerr) {
		apiErr.Err = gerr
		apiErr.Message = gerr.Message
		if apiErr.Message == "" {
			apiErr.Message = truncate(gerr.Body, 512)
		}
	}
	return apiErr
}

// GetFeed fetches the definition of feedID. The body is returned as received.
func (c *Client) GetFeed(ctx context.Context, feedID string) (*Response, error) {
	const op = "get feed"

	token, err := c.token(op)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.FeedURL(feedID), nil)
	if err != nil {
		return nil, &Error{Kind: KindConfig, Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	return c.do(op, req)
}

// ImportResult is the outcome of ImportLogs.
type ImportResult struct {
	// Payload is the exact JSON body that was sent.
	Payload  []byte
	Response *Response
}

// ImportLogs posts records for logType, attributed to forwarderID. Records
// are sent in order in a single request; partial acceptance by the server is
// not reported.
func (c *Client) ImportLogs(ctx context.Context, forwarderID, logType string, records []LogRecord) (*ImportResult, error) {
	const op = "import logs"

	body := NewImportLogsRequest(c.target.ForwarderName(forwarderID), records)
	payload, err := body.Marshal()
	if err != nil {
		return nil, &Error{Kind: KindConfig, Op: op, Err: err}
	}

	token, err := c.token(op)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ImportURL(logType), bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Kind: KindConfig, Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(op, req)
	if err != nil {
		return nil, err
	}
	return &ImportResult{Payload: payload, Response: resp}, nil
}

func (c *Client) token(op string) (string, error) {
	if c.bearer != "" {
		return c.bearer, nil
	}
	if c.tokens == nil {
		return "", &Error{Kind: KindAuth, Op: op, Err: errors.New("no token source configured")}
	}

	tok, err := c.tokens.Token()
	if err != nil {
		return "", &Error{Kind: KindAuth, Op: op, Err: err}
	}
	if !tok.Valid() {
		return "", &Error{Kind: KindAuth, Op: op, Err: errors.New("token source returned an empty or expired token")}
	}

	c.log.Debug().Time("expiry", tok.Expiry).Msg("obtained access token")
	c.bearer = tok.AccessToken
	return c.bearer, nil
}

func (c *Client) do(op string, req *http.Request) (*Response, error) {
	c.log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Msg("sending request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, Err: err}
	}

	c.log.Debug().Str("method", req.Method).Int("status", resp.StatusCode).Int("bytes", len(body)).Msg("received response")

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       body,
		op:         op,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
