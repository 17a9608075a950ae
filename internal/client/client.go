// Package client talks to the remote exam REST API. Every call carries the
// caller's bearer token; a 401 ends the session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-paper/internal/logger"
)

// ErrSessionExpired is returned when the API answers 401, or when the token
// is missing or its exp claim has already passed.
var ErrSessionExpired = errors.New("session expired")

// ErrUnavailable wraps transport failures: the API could not be reached or
// did not answer in time.
var ErrUnavailable = errors.New("api unavailable")

// APIError is a non-2xx answer other than 401.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
}

// TokenStore holds a token outside of request contexts, e.g. for the CLI.
type TokenStore interface {
	Token() string
	Clear()
}

// StaticToken is an in-memory TokenStore.
type StaticToken struct {
	mu    sync.Mutex
	token string
}

// NewStaticToken returns a store holding token.
func NewStaticToken(token string) *StaticToken {
	return &StaticToken{token: token}
}

func (s *StaticToken) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *StaticToken) Clear() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

type tokenKey struct{}

// WithToken returns a context carrying the bearer token for outbound calls.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the token stored by WithToken.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

type requestIDKey struct{}

// WithRequestID returns a context whose outbound calls carry X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the ID stored by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Option configures a Client.
type Option func(*Client)

// WithTokenStore sets the fallback token source used when the context has none.
func WithTokenStore(ts TokenStore) Option {
	return func(c *Client) { c.store = ts }
}

// WithOnUnauthorized registers a hook run after a 401.
func WithOnUnauthorized(fn func(ctx context.Context)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// Client is the remote API client.
type Client struct {
	http           *resty.Client
	store          TokenStore
	onUnauthorized func(ctx context.Context)
	log            zerolog.Logger
	now            func() time.Time
}

// New creates a client for the API rooted at baseURL. No request is retried.
func New(baseURL string, timeout time.Duration, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json").
			SetRetryCount(0),
		log: logger.Component(log, "api_client"),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) token(ctx context.Context) string {
	if token := TokenFromContext(ctx); token != "" {
		return token
	}
	if c.store != nil {
		return c.store.Token()
	}
	return ""
}

// expired reports whether token is a JWT whose exp is in the past. Opaque
// tokens are left for the API to judge.
func (c *Client) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(c.now())
}

func (c *Client) expire(ctx context.Context) {
	if c.store != nil && TokenFromContext(ctx) == "" {
		c.store.Clear()
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized(ctx)
	}
}

// do sends one request. path may contain {name} placeholders filled from params.
func (c *Client) do(ctx context.Context, method, path string, params map[string]string, body, out any) error {
	token := c.token(ctx)
	if token == "" || c.expired(token) {
		c.expire(ctx)
		return ErrSessionExpired
	}

	req := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetPathParams(params)
	if id := RequestIDFromContext(ctx); id != "" {
		req.SetHeader("X-Request-ID", id)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	start := c.now()
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrUnavailable, method, path, err)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", resp.Request.URL).
		Int("status", resp.StatusCode()).
		Dur("took", c.now().Sub(start)).
		Msg("API call")

	switch status := resp.StatusCode(); {
	case status == http.StatusUnauthorized:
		c.expire(ctx)
		return ErrSessionExpired
	case status >= 300:
		return &APIError{Method: method, Path: path, Status: status, Message: errorMessage(resp.Body())}
	}

	if out == nil {
		return nil
	}
	if err := decodeData(resp.Body(), out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// decodeData unmarshals raw into out, unwrapping a {"data": ...} envelope.
func decodeData(raw []byte, out any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	if raw[0] == '{' {
		var env map[string]json.RawMessage
		if err := json.Unmarshal(raw, &env); err == nil {
			if data, ok := env["data"]; ok {
				raw = data
			}
		}
	}
	return json.Unmarshal(raw, out)
}

// errorMessage extracts a message from common API error bodies.
func errorMessage(raw []byte) string {
	var body struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		var s string
		if json.Unmarshal(body.Error, &s) == nil && s != "" {
			return s
		}
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body.Error, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
