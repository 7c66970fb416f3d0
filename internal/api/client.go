// Package api is the synchronous adapter between the SDK and the hosted Shout
// service. A Client turns (verb, path, payload) into an authenticated HTTP
// call against the configured server URL and returns the decoded response
// envelope; Fetch and FetchList pick a typed entity out of that envelope by
// its serialization key.
//
// Calls block for the whole round trip and are never retried. On any
// transport, status or decode failure the result is nil and the error says
// why (see errors.go).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/config"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

// Doer performs one JSON request and returns the decoded envelope.
type Doer interface {
	Do(ctx context.Context, method, path string, payload any) (*Envelope, error)
}

// Client is safe for concurrent use.
type Client struct {
	base      *url.URL
	token     string
	userID    string
	userAgent string
	hc        *http.Client
	limiter   *rate.Limiter
	now       func() time.Time
	log       zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithClock replaces time.Now, used for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithLogger replaces the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient builds a Client from an explicit API configuration.
func NewClient(cfg config.APIConfig, opts ...Option) (*Client, error) {
	base, err := url.Parse(cfg.ServerURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api: invalid server url %q", cfg.ServerURL)
	}

	lim := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateRPS > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(cfg.RateRPS), burst)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		base:      base,
		token:     cfg.AuthToken,
		userID:    cfg.UserID,
		userAgent: cfg.UserAgent,
		hc: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: lim,
		now:     time.Now,
		log:     log.With().Str("component", "api").Logger(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// URL returns the fully qualified URL for path.
func (c *Client) URL(path string) string {
	return c.base.JoinPath(path).String()
}

// UserID returns the configured user id, falling back to the auth token's
// subject claim.
func (c *Client) UserID() (string, error) {
	if c.userID != "" {
		return c.userID, nil
	}
	return SubjectOf(c.token)
}

// Do sends payload (JSON-encoded when non-nil) and decodes the envelope.
func (c *Client) Do(ctx context.Context, method, path string, payload any) (*Envelope, error) {
	var body io.Reader
	contentType := ""
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("api: encode %s payload: %w", path, err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}
	return c.send(ctx, method, path, body, contentType)
}

// DoMultipart uploads the file at filePath under fileField together with the
// given form fields.
func (c *Client) DoMultipart(ctx context.Context, method, path string, fields map[string]string, fileField, filePath string) (*Envelope, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("api: write field %s: %w", k, err)
		}
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("api: open upload: %w", err)
	}
	defer f.Close()

	part, err := mw.CreateFormFile(fileField, filepath.Base(filePath))
	if err != nil {
		return nil, fmt.Errorf("api: create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("api: copy upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("api: close multipart: %w", err)
	}
	return c.send(ctx, method, path, &buf, mw.FormDataContentType())
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string) (*Envelope, error) {
	if err := checkToken(c.token, c.now()); err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("api: rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), body)
	if err != nil {
		return nil, fmt.Errorf("api: create request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	lg := c.log.With().Str("request_id", reqID).Str("method", method).Str("path", path).Logger()

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observe(method, path, 0, start)
		lg.Warn().Err(err).Msg("api request failed")
		return nil, fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	observe(method, path, resp.StatusCode, start)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		lg.Warn().Err(err).Int("status", resp.StatusCode).Msg("api response unreadable")
		return nil, fmt.Errorf("api: read %s %s: %w", method, path, err)
	}

	var env Envelope
	var decodeErr error
	if len(bytes.TrimSpace(raw)) > 0 {
		decodeErr = json.Unmarshal(raw, &env)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		lg.Warn().Int("status", resp.StatusCode).Str("message", env.Message).Msg("api request rejected")
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: env.Status, Message: env.Message}
	}
	if decodeErr != nil {
		lg.Warn().Err(decodeErr).Int("status", resp.StatusCode).Msg("api response undecodable")
		return nil, fmt.Errorf("%w: %s %s: %v", ErrDecode, method, path, decodeErr)
	}

	lg.Debug().Int("status", resp.StatusCode).Dur("latency", time.Since(start)).Msg("api request")
	return &env, nil
}
