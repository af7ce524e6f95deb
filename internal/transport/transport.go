// Package transport performs JSON requests against the todo backend.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrTransport marks failures below HTTP: dial, TLS, cancelled or timed
// out contexts, truncated bodies.
var ErrTransport = errors.New("an error occurred")

// StatusError is returned for any response outside 2xx.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Doer is the part of *http.Client the transport needs.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// TokenSource yields the bearer token; "" sends no Authorization header.
type TokenSource func() (string, error)

type Request struct {
	Method string // defaults to GET
	URL    string
	Header map[string]string
	Body   []byte
}

type Response struct {
	StatusCode int
	Body       json.RawMessage
}

// Decode unmarshals the body into out. Empty bodies and a nil out are
// no-ops.
func (r *Response) Decode(out any) error {
	if out == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type Client struct {
	doer    Doer
	timeout time.Duration
	token   TokenSource
	log     zerolog.Logger
}

type Option func(*Client)

func WithDoer(d Doer) Option { return func(c *Client) { c.doer = d } }

// WithTimeout bounds each request; zero disables the bound.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

func WithToken(ts TokenSource) Option { return func(c *Client) { c.token = ts } }

func WithLogger(l zerolog.Logger) Option { return func(c *Client) { c.log = l } }

func New(opts ...Option) *Client {
	c := &Client{
		doer: http.DefaultClient,
		log:  zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Do sends req and returns the raw JSON body of a 2xx response.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	hreq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	hreq.Header.Set("Accept", "application/json")
	for k, v := range req.Header {
		hreq.Header.Set(k, v)
	}
	reqID := uuid.NewString()
	hreq.Header.Set("X-Request-ID", reqID)
	if c.token != nil {
		tok, err := c.token()
		if err != nil {
			return nil, fmt.Errorf("load token: %w", err)
		}
		if tok != "" {
			hreq.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.doer.Do(hreq)
	if err != nil {
		c.log.Warn().Err(err).
			Str("method", method).
			Str("url", req.URL).
			Str("request_id", reqID).
			Msg("request failed")
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, method, req.URL, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}

	c.log.Debug().
		Str("method", method).
		Str("url", req.URL).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Str("request_id", reqID).
		Msg("request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Method:     method,
			URL:        req.URL,
			StatusCode: resp.StatusCode,
			Body:       b,
		}
	}
	return &Response{StatusCode: resp.StatusCode, Body: b}, nil
}

// JSONHeader is the header set used for requests with a JSON body.
func JSONHeader() map[string]string {
	return map[string]string{"Content-Type": "application/json"}
}
