package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	// ServiceToken authenticates anonymous calls (public circulars) when the API requires it.
	ServiceToken string
	HTTPClient   *http.Client
}

type Client struct {
	base         *url.URL
	hc           *http.Client
	limiter      *rate.Limiter

	mu           sync.RWMutex
	serviceToken string
}

func New(opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", opts.BaseURL)
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	lim := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return &Client{base: u, hc: hc, limiter: lim, serviceToken: opts.ServiceToken}, nil
}

type tokenKey struct{}

// WithToken attaches the signed-in user's bearer token to ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFrom(ctx context.Context) string {
	v, _ := ctx.Value(tokenKey{}).(string)
	return v
}

// Request describes one API call. Path is relative to the base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Do performs req and decodes the envelope body into out (when out is non-nil).
func (c *Client) Do(ctx context.Context, req Request, out any) (Meta, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Meta{}, &APIError{Message: "rate limit wait", Err: err}
	}

	u := *c.base
	u.Path = c.base.Path + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return Meta{}, fmt.Errorf("encode %s %s: %w", req.Method, req.Path, err)
		}
		body = bytes.NewReader(b)
	}

	hr, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return Meta{}, fmt.Errorf("build %s %s: %w", req.Method, req.Path, err)
	}
	hr.Header.Set("Accept", "application/json")
	if body != nil {
		hr.Header.Set("Content-Type", "application/json")
	}
	if tok := c.bearer(ctx); tok != "" {
		hr.Header.Set("Authorization", "Bearer "+tok)
	}

	res, err := c.hc.Do(hr)
	if err != nil {
		return Meta{}, &APIError{Message: "request failed", Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 8<<20))
	if err != nil {
		return Meta{}, &APIError{StatusCode: res.StatusCode, Message: "read response", Err: err}
	}

	var env Envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if res.StatusCode >= 300 {
				return Meta{}, &APIError{StatusCode: res.StatusCode, Message: strings.TrimSpace(http.StatusText(res.StatusCode))}
			}
			return Meta{}, &APIError{StatusCode: res.StatusCode, Message: "malformed response", Err: err}
		}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return Meta{}, errorFromEnvelope(res.StatusCode, env)
	}

	if out != nil && len(env.Body) > 0 && string(env.Body) != "null" {
		if err := json.Unmarshal(env.Body, out); err != nil {
			return Meta{}, &APIError{StatusCode: res.StatusCode, Message: "malformed response body", Err: err}
		}
	}
	var meta Meta
	if env.Meta != nil {
		meta = *env.Meta
	}
	return meta, nil
}

func (c *Client) bearer(ctx context.Context) string {
	if tok := TokenFrom(ctx); tok != "" {
		return tok
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serviceToken
}

// SetServiceToken swaps the token used for anonymous calls; "" sends none.
func (c *Client) SetServiceToken(token string) {
	c.mu.Lock()
	c.serviceToken = token
	c.mu.Unlock()
}

// HasServiceToken reports whether anonymous calls carry a token.
func (c *Client) HasServiceToken() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serviceToken != ""
}

func errorFromEnvelope(status int, env Envelope) *APIError {
	ae := &APIError{StatusCode: status, Message: strings.TrimSpace(env.Message)}
	if ae.Message == "" {
		ae.Message = http.StatusText(status)
	}
	if status == http.StatusBadRequest || status == http.StatusUnprocessableEntity {
		var vb validationBody
		if len(env.Body) > 0 && json.Unmarshal(env.Body, &vb) == nil && len(vb.Errors) > 0 {
			ae.Fields = vb.Errors
		}
	}
	return ae
}

// Ping checks the API is reachable; any HTTP response counts.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/health"}, nil)
	var ae *APIError
	if errors.As(err, &ae) && ae.StatusCode != 0 {
		return nil
	}
	return err
}
