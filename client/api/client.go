// Package api is the Go client for the World Explorer API. Every request carries the
// stored access token; a 401 triggers one shared refresh through the refresh cookie and
// the request is replayed once with the new token.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/jrsteele09/world-explorer/client/credentials"
)

const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	pathRegister     = "/api/auth/register"
	pathLogin        = "/api/auth/login"
	pathLogout       = "/api/auth/logout"
	pathRefreshToken = "/api/auth/refresh-token"
)

// State is a step of a request's refresh state machine.
type State string

const (
	StateSent         State = "sent"
	StateUnauthorized State = "unauthorized"
	StateRefreshing   State = "refreshing"
	StateRetried      State = "retried"
	StateFailed       State = "failed"
)

// Transition is reported to the state observer each time a request changes state.
type Transition struct {
	Method string
	Path   string
	State  State
}

// StateObserver receives transitions. It is called from the requesting goroutine.
type StateObserver func(Transition)

// Client talks to the API. It is safe for concurrent use.
type Client struct {
	baseURL          *url.URL
	httpClient       *http.Client
	store            credentials.Store
	log              zerolog.Logger
	observer         StateObserver
	onSessionExpired func()

	// singleflight group so concurrent 401s share one refresh call
	refreshGroup singleflight.Group
}

// ClientOption configures the API client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client. A cookie jar is added to a copy of it when
// it has none, since the refresh token travels as a cookie.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

func WithStateObserver(observer StateObserver) ClientOption {
	return func(c *Client) {
		c.observer = observer
	}
}

// WithSessionExpiredHandler sets the hook run when a refresh fails for a request
// that needed authentication. Interactive callers use it to send the user back to login.
func WithSessionExpiredHandler(fn func()) ClientOption {
	return func(c *Client) {
		c.onSessionExpired = fn
	}
}

func NewClient(baseURL string, store credentials.Store, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	if store == nil {
		store = credentials.NewMemoryStore()
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
		store:      store,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("cookie jar: %w", err)
		}
		hc := *c.httpClient
		hc.Jar = jar
		c.httpClient = &hc
	}
	return c, nil
}

// Store returns the credential store the client reads tokens from.
func (c *Client) Store() credentials.Store {
	return c.store
}

// Request describes one API call.
type Request struct {
	Method string
	Path   string
	Body   any // encoded as JSON when non-nil
	Out    any // decoded from a successful JSON response when non-nil

	// NoRefresh sends the request once and returns a 401 as is.
	NoRefresh bool
}

// Do sends req with the current access token. On a 401 it refreshes the token once,
// shared with any other request that hit a 401 at the same time, and replays req.
// When the refresh fails the original 401 is returned.
func (c *Client) Do(ctx context.Context, req Request) error {
	var payload []byte
	if req.Body != nil {
		var err error
		if payload, err = json.Marshal(req.Body); err != nil {
			return fmt.Errorf("encode %s %s: %w", req.Method, req.Path, err)
		}
	}

	sentToken, err := c.store.Get()
	if err != nil {
		return fmt.Errorf("read access token: %w", err)
	}

	resp, err := c.send(ctx, req.Method, req.Path, payload, sentToken)
	if err != nil {
		return err
	}
	c.notify(req, StateSent)

	if resp.StatusCode != http.StatusUnauthorized || req.NoRefresh || isAuthPath(req.Path) {
		return c.decode(resp, req)
	}

	c.notify(req, StateUnauthorized)
	original := c.decode(resp, req)

	c.notify(req, StateRefreshing)
	newToken, err := c.refreshAfter(ctx, sentToken)
	if err != nil {
		c.log.Debug().Err(err).Str("path", req.Path).Msg("refresh failed")
		if clearErr := c.store.Clear(); clearErr != nil {
			c.log.Warn().Err(clearErr).Msg("failed to clear access token")
		}
		if c.onSessionExpired != nil {
			c.onSessionExpired()
		}
		c.notify(req, StateFailed)
		return original
	}

	resp, err = c.send(ctx, req.Method, req.Path, payload, newToken)
	if err != nil {
		return err
	}
	c.notify(req, StateRetried)
	return c.decode(resp, req)
}

// Refresh asks the server for a new access token using the refresh cookie and stores it.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	v, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		return c.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// refreshAfter returns a token newer than sentToken, refreshing only if no other
// caller has already done so.
func (c *Client) refreshAfter(ctx context.Context, sentToken string) (string, error) {
	if current, err := c.store.Get(); err == nil && current != "" && current != sentToken {
		return current, nil
	}

	v, err, shared := c.refreshGroup.Do("refresh", func() (any, error) {
		// Double-check after acquiring the singleflight slot
		if current, err := c.store.Get(); err == nil && current != "" && current != sentToken {
			return current, nil
		}
		return c.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return "", err
	}
	c.log.Debug().Bool("shared", shared).Msg("access token refreshed")
	return v.(string), nil
}

func (c *Client) refresh(ctx context.Context) (string, error) {
	resp, err := c.send(ctx, http.MethodGet, pathRefreshToken, nil, "")
	if err != nil {
		return "", err
	}

	var out struct {
		AccessToken string `json:"accessToken"`
	}
	if err := c.decode(resp, Request{Method: http.MethodGet, Path: pathRefreshToken, Out: &out}); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", errors.New("refresh response carried no access token")
	}
	if err := c.store.Set(out.AccessToken); err != nil {
		return "", fmt.Errorf("store access token: %w", err)
	}
	return out.AccessToken, nil
}

// send builds a fresh request so the Authorization header always reflects token.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, token string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func (c *Client) decode(resp *http.Response, req Request) error {
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &Error{StatusCode: resp.StatusCode, Method: req.Method, Path: req.Path}
		var body struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
			apiErr.Message = body.Message
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if req.Out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(req.Out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.Path, err)
	}
	return nil
}

func (c *Client) notify(req Request, state State) {
	if c.observer != nil {
		c.observer(Transition{Method: req.Method, Path: req.Path, State: state})
	}
}

// isAuthPath reports calls that are made without a session. A 401 from one of
// them is final: it never triggers a refresh or the session-expired hook.
func isAuthPath(path string) bool {
	return path == pathLogin || path == pathRegister || path == pathRefreshToken
}
