package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"github.com/trezero/bookmark-bar-switcher/internal/auth"
	"github.com/trezero/bookmark-bar-switcher/internal/logging"
)

// Defaults for Client.
const (
	DefaultAPIBase    = "https://www.googleapis.com/drive/v3"
	DefaultUploadBase = "https://www.googleapis.com/upload/drive/v3"
	DefaultRevokeURL  = "https://oauth2.googleapis.com/revoke"
	DefaultSpace      = "appDataFolder"
	DefaultNamePrefix = "bbs-backup"
	DefaultMaxBackups = 10
	DefaultCooldown   = 60 * time.Second
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// BackupMeta identifies one remote backup.
type BackupMeta struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ModifiedTime string `json:"modifiedTime"`
}

// Client talks to the Drive v3 API. It is safe for concurrent use.
type Client struct {
	tokens     auth.TokenSource
	httpClient *http.Client
	apiBase    string
	uploadBase string
	revokeURL  string
	space      string
	namePrefix string
	maxBackups int
	cooldown   time.Duration
	now        func() time.Time
	logger     *slog.Logger

	limiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithBaseURLs overrides the metadata and upload API roots. Empty values keep
// the defaults.
func WithBaseURLs(apiBase, uploadBase string) Option {
	return func(cl *Client) {
		if apiBase != "" {
			cl.apiBase = strings.TrimRight(apiBase, "/")
		}
		if uploadBase != "" {
			cl.uploadBase = strings.TrimRight(uploadBase, "/")
		}
	}
}

// WithRevokeURL sets the token revocation endpoint used by Disconnect. An
// empty URL disables revocation.
func WithRevokeURL(u string) Option {
	return func(cl *Client) {
		cl.revokeURL = u
	}
}

// WithSpace sets the Drive space backups live in.
func WithSpace(space string) Option {
	return func(cl *Client) {
		if space != "" {
			cl.space = space
		}
	}
}

// WithNamePrefix sets the object name prefix.
func WithNamePrefix(prefix string) Option {
	return func(cl *Client) {
		if prefix != "" {
			cl.namePrefix = prefix
		}
	}
}

// WithMaxBackups sets how many remote backups survive pruning.
func WithMaxBackups(n int) Option {
	return func(cl *Client) {
		if n > 0 {
			cl.maxBackups = n
		}
	}
}

// WithCooldown sets the minimum spacing between successful uploads.
func WithCooldown(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.cooldown = d
		}
	}
}

// WithClock overrides the time source used for the cooldown.
func WithClock(now func() time.Time) Option {
	return func(cl *Client) {
		cl.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = l
	}
}

// NewClient creates a Client authenticating through tokens.
func NewClient(tokens auth.TokenSource, opts ...Option) *Client {
	c := &Client{
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiBase:    DefaultAPIBase,
		uploadBase: DefaultUploadBase,
		revokeURL:  DefaultRevokeURL,
		space:      DefaultSpace,
		namePrefix: DefaultNamePrefix,
		maxBackups: DefaultMaxBackups,
		cooldown:   DefaultCooldown,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.limiter = rate.NewLimiter(rate.Every(c.cooldown), 1)
	return c
}

// MaxBackups returns the pruning cap.
func (c *Client) MaxBackups() int {
	return c.maxBackups
}

// Token obtains an access token, prompting the user when interactive.
func (c *Client) Token(ctx context.Context, interactive bool) (string, error) {
	return c.tokens.Token(ctx, interactive)
}

// IsConnected reports whether a token is available without user interaction.
func (c *Client) IsConnected(ctx context.Context) bool {
	tok, err := c.tokens.Token(ctx, false)
	return err == nil && tok != ""
}

// Disconnect revokes and forgets the current token, then signs out of the
// token source. Revocation failures are logged.
func (c *Client) Disconnect(ctx context.Context) error {
	if tok, err := c.tokens.Token(ctx, false); err == nil && tok != "" {
		if c.revokeURL != "" {
			c.revoke(ctx, tok)
		}
		if err := c.tokens.Invalidate(ctx, tok); err != nil {
			return errors.Wrap(err, "invalidating token")
		}
	}
	if so, ok := c.tokens.(auth.SignOuter); ok {
		if err := so.SignOut(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) revoke(ctx context.Context, token string) {
	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		c.logger.Warn("building revoke request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("revoking token", "error", err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode/100 != 2 {
		c.logger.Warn("revoking token", "status", resp.Status)
	}
}

type requestBuilder func(ctx context.Context) (*http.Request, error)

// do sends an authenticated request, retrying once with a fresh token on 401.
// The caller closes the returned body.
func (c *Client) do(ctx context.Context, op string, build requestBuilder) (*http.Response, error) {
	token, err := c.tokens.Token(ctx, false)
	if err != nil {
		return nil, errors.Wrapf(err, "drive %s", op)
	}

	resp, err := c.send(ctx, op, build, token)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		rejected := requestError(op, resp)
		c.logger.Debug("drive token rejected, retrying once", "op", op)
		if err := c.tokens.Invalidate(ctx, token); err != nil {
			c.logger.Warn("invalidating rejected token", "op", op, "error", err)
		}
		fresh, err := c.tokens.Token(ctx, false)
		if err != nil || fresh == "" {
			return nil, rejected
		}
		if resp, err = c.send(ctx, op, build, fresh); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode/100 != 2 {
		return nil, requestError(op, resp)
	}
	return resp, nil
}

func (c *Client) send(ctx context.Context, op string, build requestBuilder, token string) (*http.Response, error) {
	req, err := build(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "building drive %s request", op)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	c.logger.Log(ctx, logging.LevelTrace, "drive request", "op", op, "method", req.Method, "url", req.URL.Redacted())
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "drive %s", op)
	}
	c.logger.Log(ctx, logging.LevelTrace, "drive response", "op", op, "status", resp.StatusCode)
	return resp, nil
}

// requestError consumes and closes resp.
func requestError(op string, resp *http.Response) *RequestError {
	defer resp.Body.Close()
	e := &RequestError{Op: op, StatusCode: resp.StatusCode, Status: resp.Status}

	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if json.Unmarshal(data, &body) == nil {
		e.Message = body.Error.Message
	}
	return e
}

func decodeJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Wrap(err, "decoding drive response")
	}
	return nil
}

func jsonRequest(method, rawURL string, body []byte, contentType string) requestBuilder {
	return func(ctx context.Context) (*http.Request, error) {
		var r io.Reader
		if body != nil {
			r = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, rawURL, r)
		if err != nil {
			return nil, err
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}
}
