// Package apiclient is the JSON-over-HTTP client of the product's admin
// REST API.
//
// Every admin console owns one Client carrying that admin's bearer token.
// List endpoints return {data, pagination}; mutation endpoints return
// {success, message?, data?}. A 401 from any endpoint is ErrUnauthorized.
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
	"time"

	"github.com/google/uuid"
	"github.com/scanmenu/admindesk/internal/app/system/metrics"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// maxErrorBody caps how much of an error response is read for its message.
const maxErrorBody = 64 << 10

var errTimeout = errors.New("apiclient: timeout")

// Options configures a Client.
type Options struct {
	// BaseURL is the API root, e.g. "https://api.example.com/api".
	BaseURL string
	// Token is the admin's bearer token. Empty for unauthenticated calls
	// such as sign-in.
	Token string
	// Transport is the underlying round tripper. Defaults to
	// http.DefaultTransport.
	Transport http.RoundTripper
	Logger    *zap.Logger
}

// Client calls the admin API on behalf of one admin.
type Client struct {
	base *url.URL
	http *http.Client
	log  *zap.Logger
}

// New builds a Client. The base URL must be absolute http(s).
func New(opts Options) (*Client, error) {
	base, err := ParseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	rt := opts.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	if opts.Token != "" {
		rt = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token, TokenType: "Bearer"}),
			Base:   rt,
		}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		base: base,
		http: &http.Client{Transport: rt},
		log:  log,
	}, nil
}

// ParseBaseURL validates an API root URL.
func ParseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(raw), "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q: must be absolute http(s)", raw)
	}
	return u, nil
}

// request describes one API call.
type request struct {
	resource string // metrics label
	method   string
	path     string
	query    url.Values
	body     any
}

// do performs the call and decodes a 2xx JSON body into out (if non-nil).
func (c *Client) do(ctx context.Context, rq request, out any) error {
	started := time.Now()
	outcome := metrics.OutcomeError
	defer func() { metrics.ObserveAPI(rq.resource, rq.method, outcome, started) }()

	u := c.base.JoinPath(rq.path)
	if len(rq.query) > 0 {
		u.RawQuery = rq.query.Encode()
	}

	var body io.Reader
	if rq.body != nil {
		b, err := json.Marshal(rq.body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", rq.method, rq.path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, rq.method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", rq.method, rq.path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", errTimeout, err)
		}
		c.log.Warn("api request failed",
			zap.String("method", rq.method),
			zap.String("path", rq.path),
			zap.String("request_id", reqID),
			zap.Error(err))
		return fmt.Errorf("%s %s: %w", rq.method, rq.path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		outcome = metrics.OutcomeUnauthorized
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%s %s: %w", rq.method, rq.path, ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Method: rq.method, Path: rq.path, Code: resp.StatusCode}
		var env struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)); err == nil && json.Unmarshal(b, &env) == nil {
			se.Message = env.Message
			if se.Message == "" {
				se.Message = env.Error
			}
		}
		c.log.Warn("api request rejected",
			zap.String("method", rq.method),
			zap.String("path", rq.path),
			zap.Int("status", resp.StatusCode),
			zap.String("request_id", reqID))
		return se
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("decode %s %s: %w", rq.method, rq.path, err)
		}
		if a, ok := out.(acceptor); ok {
			if err := a.accepted(); err != nil {
				outcome = metrics.OutcomeRejected
				return err
			}
		}
	}
	outcome = metrics.OutcomeOK
	return nil
}

// acceptor is implemented by envelopes that can report an application-level
// failure inside a 2xx response.
type acceptor interface {
	accepted() error
}
