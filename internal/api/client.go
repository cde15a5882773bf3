// Package api is the single gateway between filedash and the file API.
// Every call goes through Client.Send, which attaches the session's bearer
// token and maps failures onto TransportError, APIError, or DecodeError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/filedash/filedash/internal/config"
	"github.com/filedash/filedash/internal/http"
	"github.com/filedash/filedash/internal/logging"
	"github.com/filedash/filedash/internal/progress"
)

// TokenSource supplies the current bearer credential. An empty string means
// no Authorization header is sent.
type TokenSource interface {
	Token() string
}

// ResponseKind selects how Send treats a successful response body.
type ResponseKind int

const (
	KindJSON ResponseKind = iota // Decode into out
	KindBlob                     // Return raw bytes in Response.Data
	KindNone                     // Discard
)

// Request describes one API call. Path is relative to the configured base
// URL, e.g. "file/42/raw/".
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        io.Reader
	ContentType string
	Kind        ResponseKind
}

// Response is what Send returns on success.
type Response struct {
	Status int
	Header nethttp.Header
	Data   []byte // Only set for KindBlob
}

// retryLogger implements retryablehttp.LeveledLogger on top of zerolog.
type retryLogger struct {
	logger *logging.Logger
}

func (l retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}

// noRetry never retries. Failures surface to the caller on the first attempt.
func noRetry(ctx context.Context, _ *nethttp.Response, _ error) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return false, nil
}

// Client is the authenticated request gateway. It holds no dashboard state.
type Client struct {
	httpClient *nethttp.Client
	baseURL    *url.URL
	tokens     TokenSource
	timeout    time.Duration
	logger     *logging.Logger
}

// NewClient creates a gateway for cfg.APIBaseURL that reads its credential
// from tokens on every request.
func NewClient(cfg *config.Config, tokens TokenSource, logger *logging.Logger) (*Client, error) {
	logger = logging.OrDiscard(logger)

	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		return nil, fmt.Errorf("API base URL is empty")
	}
	base, err := url.Parse(cfg.APIBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q: scheme and host are required", cfg.APIBaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	httpClient, err := http.ConfigureHTTPClient(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = httpClient
	retryClient.RetryMax = 0
	retryClient.CheckRetry = noRetry
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = retryLogger{logger: logger}

	return &Client{
		httpClient: retryClient.StandardClient(),
		baseURL:    base,
		tokens:     tokens,
		timeout:    cfg.RequestTimeout,
		logger:     logger,
	}, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// resolve joins an escaped relative path onto the base URL.
func (c *Client) resolve(path string, query url.Values) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid request path %q: %w", path, err)
	}
	u := c.baseURL.ResolveReference(ref)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u, nil
}

// Send performs req. For KindJSON the body is decoded into out (which may be
// nil to skip decoding). It never retries.
func (c *Client) Send(ctx context.Context, req Request, out interface{}) (*Response, error) {
	method := req.Method
	if method == "" {
		method = nethttp.MethodGet
	}
	op := method + " " + req.Path

	// Transfers are bounded only by the caller's context
	if c.timeout > 0 && req.Body == nil && req.Kind != KindBlob {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
	}

	target, err := c.resolve(req.Path, req.Query)
	if err != nil {
		return nil, err
	}

	httpReq, err := nethttp.NewRequestWithContext(ctx, method, target.String(), req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	if req.Kind == KindJSON {
		httpReq.Header.Set("Accept", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug().Err(err).Str("op", op).Msg("Request failed")
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	var body io.Reader = resp.Body
	if req.Kind == KindBlob && resp.StatusCode < 300 {
		if reporter := progress.FromContext(ctx); reporter != nil {
			reporter.Start(resp.ContentLength, req.Path)
			defer reporter.Finish()
			body = progress.NewProgressReader(resp.Body, reporter)
		}
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug().
		Str("op", op).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Int("bytes", len(raw)).
		Msg("Request completed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Op: op, Status: resp.StatusCode, Body: decodeErrorBody(raw), Raw: raw}
	}

	result := &Response{Status: resp.StatusCode, Header: resp.Header}
	switch req.Kind {
	case KindJSON:
		if out != nil {
			if err := json.Unmarshal(raw, out); err != nil {
				return nil, &DecodeError{Op: op, Err: err}
			}
		}
	case KindBlob:
		result.Data = raw
	}
	return result, nil
}

// decodeErrorBody returns the JSON value of an error body, or its text when
// it is not JSON. Empty bodies decode to nil.
func decodeErrorBody(raw []byte) interface{} {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(trimmed, &v); err == nil {
		return v
	}
	return string(trimmed)
}
