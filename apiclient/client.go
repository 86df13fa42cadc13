// Package apiclient is the authenticated HTTP client for the condominium API.
//
// Every request gets the session's access token as a bearer credential. A
// 401 triggers one token refresh followed by one replay of the request; if
// the refresh is impossible or fails, the session is logged out and the
// Navigator is sent to the login entry point while the caller still gets
// the error.
package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-condo-client/internal/config"
	errs "github.com/jrsteele09/go-condo-client/internal/errors"
	"github.com/jrsteele09/go-condo-client/sessions"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// MaxResponseBytes caps how much of a response body is read.
const MaxResponseBytes = 32 << 20

// Client is safe for concurrent use.
type Client struct {
	baseURL      string
	refreshPath  string
	loginURL     string
	httpClient   *http.Client
	store        *sessions.Store
	navigator    Navigator
	interceptors []func(*http.Request)
	metrics      *Metrics
	log          zerolog.Logger

	refreshes singleflight.Group

	expiredMu     sync.Mutex
	expiredSubs   map[int]func(SessionExpired)
	nextExpiredID int
}

type Option func(*Client)

// WithHTTPClient replaces the default client (30s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithNavigator(n Navigator) Option {
	return func(c *Client) { c.navigator = n }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithRefreshPath(path string) Option {
	return func(c *Client) { c.refreshPath = path }
}

func WithLoginURL(loginURL string) Option {
	return func(c *Client) { c.loginURL = loginURL }
}

// WithRequestInterceptor adds fn to run on every outgoing request after the
// credentials have been attached, including replays and the refresh call.
func WithRequestInterceptor(fn func(*http.Request)) Option {
	return func(c *Client) { c.interceptors = append(c.interceptors, fn) }
}

// New creates a client for baseURL, which must include the API version
// prefix (e.g. "http://localhost:8000/api/v1").
func New(baseURL string, store *sessions.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		refreshPath: "/auth/refresh",
		loginURL:    "/login",
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		store:       store,
		log:         zerolog.Nop(),
		expiredSubs: make(map[int]func(SessionExpired)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.navigator == nil {
		c.navigator = LogNavigator{Log: c.log}
	}
	c.log = c.log.With().Str("component", "api-client").Logger()
	return c
}

// NewFromConfig builds a client from the environment-backed configuration.
// opts are applied after the configured values.
func NewFromConfig(cfg config.ClientConfig, store *sessions.Store, opts ...Option) *Client {
	base := []Option{
		WithHTTPClient(&http.Client{Timeout: cfg.GetHTTPTimeout()}),
		WithRefreshPath(cfg.GetRefreshPath()),
		WithLoginURL(cfg.GetLoginURL()),
	}
	return New(cfg.GetBaseURL()+cfg.GetAPIVersion(), store, append(base, opts...)...)
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Store() *sessions.Store {
	return c.store
}

// Do sends req and decodes a 2xx JSON body into out (which may be nil).
func (c *Client) Do(ctx context.Context, req *Request, out any) error {
	resp, err := c.DoRaw(ctx, req)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// DoRaw sends req and returns the raw response. Non-2xx statuses come back
// as *APIError; transport failures are returned unchanged.
func (c *Client) DoRaw(ctx context.Context, req *Request) (*Response, error) {
	return c.do(ctx, req.clone(), uuid.NewString())
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, NewRequest(http.MethodGet, path).WithQuery(query), out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, NewRequest(http.MethodDelete, path), out)
}

func (c *Client) PostMultipart(ctx context.Context, path string, form *MultipartForm, out any) error {
	req, err := NewMultipartRequest(path, form)
	if err != nil {
		return err
	}
	return c.Do(ctx, req, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	req, err := NewJSONRequest(method, path, body)
	if err != nil {
		return err
	}
	return c.Do(ctx, req, out)
}

// do runs one logical request through the refresh state machine. A replay
// re-enters do with retried set, which makes it ineligible for another refresh.
func (c *Client) do(ctx context.Context, req *Request, requestID string) (*Response, error) {
	resp, sentToken, err := c.send(ctx, req, requestID)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || !c.refreshable(req) {
		return c.result(req, resp)
	}

	authErr := newAPIError(req, resp)
	token, err := c.refreshAccessToken(ctx, sentToken)
	if err != nil {
		// The original 401 comes first so errors.As finds it before any
		// error from the refresh call itself.
		return nil, fmt.Errorf("%w: %w", authErr, err)
	}

	replay := req.clone()
	replay.retried = true
	c.log.Debug().Str("request_id", requestID).Str("path", req.Path).Bool("token_changed", token != sentToken).Msg("replaying request after refresh")
	return c.do(ctx, replay, requestID)
}

func (c *Client) refreshable(req *Request) bool {
	return !req.retried && !req.SkipRefresh && req.Token == ""
}

func (c *Client) result(req *Request, resp *Response) (*Response, error) {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	return resp, newAPIError(req, resp)
}

// send performs one HTTP exchange and returns the token it attached.
func (c *Client) send(ctx context.Context, req *Request, requestID string) (*Response, string, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create API request: %w", err)
	}
	for k, v := range req.Header {
		httpReq.Header[k] = append([]string(nil), v...)
	}
	switch {
	case req.ContentType != "":
		httpReq.Header.Set("Content-Type", req.ContentType)
	case req.Body != nil && httpReq.Header.Get("Content-Type") == "":
		httpReq.Header.Set("Content-Type", contentTypeJSON)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", contentTypeJSON)
	}
	httpReq.Header.Set(headerRequestID, requestID)

	token := c.attachCredentials(httpReq, req)
	for _, fn := range c.interceptors {
		fn(httpReq)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.request(req.Method, 0)
		c.log.Debug().Err(err).Str("request_id", requestID).Str("method", req.Method).Str("path", req.Path).Msg("request failed")
		return nil, token, err
	}
	defer resp.Body.Close()

	b, err := readBody(resp.Body)
	if err != nil {
		c.metrics.request(req.Method, 0)
		return nil, token, fmt.Errorf("failed to read response for %s %s: %w", req.Method, req.Path, err)
	}

	c.metrics.request(req.Method, resp.StatusCode)
	c.log.Debug().
		Str("request_id", requestID).
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", resp.StatusCode).
		Bool("retry", req.retried).
		Dur("duration", time.Since(start)).
		Msg("request completed")

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: b}, token, nil
}

// attachCredentials is the request interceptor: it reads the session's
// current access token on every call and never fails.
func (c *Client) attachCredentials(httpReq *http.Request, req *Request) string {
	token := req.Token
	if token == "" && c.store != nil {
		token = c.store.AccessToken()
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	return token
}

// readBody reads one byte past the cap so an oversized body is an error
// rather than a silently shortened one.
func readBody(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, MaxResponseBytes+1))
	if err != nil {
		return nil, err
	}
	if len(b) > MaxResponseBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", errs.ErrResponseTooLarge, MaxResponseBytes)
	}
	return b, nil
}
