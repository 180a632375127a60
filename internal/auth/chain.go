package auth

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/singleflight"
)

// Chain tries each source in order and returns the first token obtained.
// Concurrent Token calls with the same interactivity share one attempt.
type Chain struct {
	sources []TokenSource
	group   singleflight.Group
	logger  *slog.Logger
}

var (
	_ TokenSource = (*Chain)(nil)
	_ SignOuter   = (*Chain)(nil)
)

// NewChain creates a Chain over sources. A nil logger uses slog.Default().
func NewChain(logger *slog.Logger, sources ...TokenSource) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{sources: sources, logger: logger}
}

// Token returns the first token any source yields. If every source reports
// ErrNotAuthenticated the result is ErrNotAuthenticated; otherwise the last
// other failure is returned.
func (c *Chain) Token(ctx context.Context, interactive bool) (string, error) {
	key := "silent"
	if interactive {
		key = "interactive"
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.token(ctx, interactive)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Chain) token(ctx context.Context, interactive bool) (string, error) {
	var lastErr error
	for i, src := range c.sources {
		tok, err := src.Token(ctx, interactive)
		if err == nil && tok != "" {
			return tok, nil
		}
		if err != nil && !errors.Is(err, ErrNotAuthenticated) {
			lastErr = err
		}
		c.logger.Debug("token source unavailable", "source", i, "error", err)
	}
	if lastErr != nil {
		return "", lastErr
	}
	return "", ErrNotAuthenticated
}

// Invalidate passes token to every source.
func (c *Chain) Invalidate(ctx context.Context, token string) error {
	var errs []error
	for _, src := range c.sources {
		if err := src.Invalidate(ctx, token); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SignOut signs out of every source that supports it.
func (c *Chain) SignOut(ctx context.Context) error {
	var errs []error
	for _, src := range c.sources {
		if so, ok := src.(SignOuter); ok {
			if err := so.SignOut(ctx); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
