package auth

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/trezero/bookmark-bar-switcher/internal/state"
)

// Default Google endpoints and scope.
const (
	DefaultAuthURL     = "https://accounts.google.com/o/oauth2/auth"
	DefaultTokenURL    = "https://oauth2.googleapis.com/token"
	DefaultRedirectURL = "http://127.0.0.1"
	DriveAppDataScope  = "https://www.googleapis.com/auth/drive.appdata"
)

// expiryDelta treats tokens this close to expiry as already expired.
const expiryDelta = time.Minute

// TokenData is the stored form of web-flow credentials.
type TokenData struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	// ExpiresAt is in Unix milliseconds.
	ExpiresAt int64 `json:"expiresAt"`
}

// Prompter shows the consent URL to the user and returns the authorisation
// code (or the full redirect URL carrying it).
type Prompter func(ctx context.Context, authURL string) (string, error)

// WebFlowConfig holds the OAuth client registration.
type WebFlowConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	Scopes       []string
}

// WebFlow obtains tokens through the authorisation code flow and keeps them
// in a state.Store under state.KeyGoogleAuth.
type WebFlow struct {
	oauth      *oauth2.Config
	store      state.Store
	httpClient *http.Client
	prompt     Prompter
	now        func() time.Time
	logger     *slog.Logger

	mu sync.Mutex
}

var (
	_ TokenSource = (*WebFlow)(nil)
	_ SignOuter   = (*WebFlow)(nil)
)

// WebFlowOption configures a WebFlow.
type WebFlowOption func(*WebFlow)

// WithHTTPClient sets the client used for token endpoint calls.
func WithHTTPClient(c *http.Client) WebFlowOption {
	return func(w *WebFlow) {
		w.httpClient = c
	}
}

// WithPrompter sets how the interactive flow reaches the user.
func WithPrompter(p Prompter) WebFlowOption {
	return func(w *WebFlow) {
		w.prompt = p
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) WebFlowOption {
	return func(w *WebFlow) {
		w.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) WebFlowOption {
	return func(w *WebFlow) {
		w.logger = l
	}
}

// NewWebFlow creates a WebFlow. Empty endpoint fields use the Google defaults.
func NewWebFlow(cfg WebFlowConfig, store state.Store, opts ...WebFlowOption) *WebFlow {
	authURL := cmpOr(cfg.AuthURL, DefaultAuthURL)
	tokenURL := cmpOr(cfg.TokenURL, DefaultTokenURL)
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{DriveAppDataScope}
	}

	w := &WebFlow{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cmpOr(cfg.RedirectURL, DefaultRedirectURL),
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		store:  store,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func cmpOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// Token returns the stored access token while it is fresh, refreshes it
// with the stored refresh token otherwise, and, when interactive, falls back
// to the consent flow.
func (w *WebFlow) Token(ctx context.Context, interactive bool) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var stored TokenData
	if _, err := w.store.Get(ctx, state.KeyGoogleAuth, &stored); err != nil {
		return "", errors.Wrap(err, "loading stored token")
	}

	if stored.AccessToken != "" && w.now().Add(expiryDelta).Before(time.UnixMilli(stored.ExpiresAt)) {
		return stored.AccessToken, nil
	}

	if stored.RefreshToken != "" {
		tok, err := w.oauth.TokenSource(w.clientContext(ctx), &oauth2.Token{
			RefreshToken: stored.RefreshToken,
		}).Token()
		if err == nil {
			return w.save(ctx, tok, stored.RefreshToken)
		}
		w.logger.Debug("token refresh failed", "error", err)
		if !interactive {
			return "", errors.Mark(errors.Wrap(err, "refreshing token"), ErrNotAuthenticated)
		}
	}

	if !interactive || w.prompt == nil {
		return "", ErrNotAuthenticated
	}
	if w.oauth.ClientID == "" {
		return "", errors.Wrap(ErrNotAuthenticated, "oauth.client_id is not configured")
	}

	oauthState := uuid.NewString()
	authURL := w.oauth.AuthCodeURL(oauthState, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	answer, err := w.prompt(ctx, authURL)
	if err != nil {
		return "", errors.Wrap(err, "prompting for authorisation")
	}
	code, err := extractCode(answer, oauthState)
	if err != nil {
		return "", errors.Mark(err, ErrNotAuthenticated)
	}
	if code == "" {
		return "", errors.Wrap(ErrNotAuthenticated, "no authorisation code given")
	}

	tok, err := w.oauth.Exchange(w.clientContext(ctx), code)
	if err != nil {
		return "", errors.Mark(errors.Wrap(err, "exchanging authorisation code"), ErrNotAuthenticated)
	}
	return w.save(ctx, tok, stored.RefreshToken)
}

// Invalidate expires the stored access token if it matches token. The
// refresh token is kept.
func (w *WebFlow) Invalidate(ctx context.Context, token string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var stored TokenData
	ok, err := w.store.Get(ctx, state.KeyGoogleAuth, &stored)
	if err != nil || !ok || stored.AccessToken != token {
		return err
	}
	stored.AccessToken = ""
	stored.ExpiresAt = 0
	return errors.Wrap(w.store.Set(ctx, state.KeyGoogleAuth, stored), "invalidating token")
}

// SignOut deletes the stored credentials.
func (w *WebFlow) SignOut(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return errors.Wrap(w.store.Delete(ctx, state.KeyGoogleAuth), "signing out")
}

func (w *WebFlow) save(ctx context.Context, tok *oauth2.Token, prevRefresh string) (string, error) {
	data := TokenData{
		AccessToken:  tok.AccessToken,
		RefreshToken: cmpOr(tok.RefreshToken, prevRefresh),
	}
	if !tok.Expiry.IsZero() {
		data.ExpiresAt = tok.Expiry.UnixMilli()
	} else {
		data.ExpiresAt = w.now().Add(time.Hour).UnixMilli()
	}
	if err := w.store.Set(ctx, state.KeyGoogleAuth, data); err != nil {
		return "", errors.Wrap(err, "storing token")
	}
	w.logger.Debug("stored access token", "expires_at", time.UnixMilli(data.ExpiresAt))
	return data.AccessToken, nil
}

func (w *WebFlow) clientContext(ctx context.Context) context.Context {
	if w.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, w.httpClient)
}

// extractCode accepts either a bare code or a redirect URL with a code
// query parameter. A redirect URL must carry the state the consent URL was
// issued with.
func extractCode(answer, wantState string) (string, error) {
	answer = strings.TrimSpace(answer)
	u, err := url.Parse(answer)
	if err != nil || u.Scheme == "" {
		return answer, nil
	}
	q := u.Query()
	if q.Get("state") != wantState {
		return "", errors.Wrapf(ErrStateMismatch, "got %q", q.Get("state"))
	}
	return q.Get("code"), nil
}

// TerminalPrompter prints the consent URL to out and reads one line from in.
func TerminalPrompter(in io.Reader, out io.Writer) Prompter {
	reader := bufio.NewReader(in)
	return func(ctx context.Context, authURL string) (string, error) {
		fmt.Fprintf(out, "Open this URL in your browser and authorise access:\n\n  %s\n\n", authURL)
		fmt.Fprint(out, "Paste the code (or the full redirect URL): ")

		type result struct {
			line string
			err  error
		}
		ch := make(chan result, 1)
		go func() {
			line, err := reader.ReadString('\n')
			if err == io.EOF && line != "" {
				err = nil
			}
			ch <- result{line, err}
		}()

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case r := <-ch:
			return strings.TrimSpace(r.line), r.err
		}
	}
}
