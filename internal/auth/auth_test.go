package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezero/bookmark-bar-switcher/internal/logging"
	"github.com/trezero/bookmark-bar-switcher/internal/state"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// tokenServer fakes the OAuth token endpoint.
type tokenServer struct {
	*httptest.Server
	refreshes atomic.Int32
	exchanges atomic.Int32
	failAll   atomic.Bool
}

func newTokenServer(t *testing.T) *tokenServer {
	t.Helper()
	ts := &tokenServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client-id", r.PostForm.Get("client_id"))

		if ts.failAll.Load() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}

		resp := map[string]any{"token_type": "Bearer", "expires_in": 3600}
		switch r.PostForm.Get("grant_type") {
		case "refresh_token":
			ts.refreshes.Add(1)
			assert.Equal(t, "1//refresh", r.PostForm.Get("refresh_token"))
			resp["access_token"] = "ya29.refreshed"
		case "authorization_code":
			ts.exchanges.Add(1)
			assert.Equal(t, "the-code", r.PostForm.Get("code"))
			resp["access_token"] = "ya29.exchanged"
			resp["refresh_token"] = "1//refresh"
		default:
			t.Errorf("unexpected grant_type %q", r.PostForm.Get("grant_type"))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newTestFlow(t *testing.T, ts *tokenServer, store state.Store, opts ...WebFlowOption) *WebFlow {
	t.Helper()
	base := []WebFlowOption{
		WithHTTPClient(ts.Client()),
		WithClock(func() time.Time { return testNow }),
		WithLogger(logging.ForTest(t)),
	}
	return NewWebFlow(WebFlowConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		AuthURL:      ts.URL + "/auth",
		TokenURL:     ts.URL + "/token",
	}, store, append(base, opts...)...)
}

func TestStatic(t *testing.T) {
	ctx := context.Background()

	_, err := NewStatic("").Token(ctx, false)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	s := NewStatic("first-party")
	tok, err := s.Token(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "first-party", tok)

	require.NoError(t, s.Invalidate(ctx, "other"))
	_, err = s.Token(ctx, false)
	require.NoError(t, err, "unknown tokens are ignored")

	require.NoError(t, s.Invalidate(ctx, "first-party"))
	_, err = s.Token(ctx, true)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestWebFlow_FreshStoredToken(t *testing.T) {
	ctx := context.Background()
	ts := newTokenServer(t)
	store := state.NewMemoryStore()
	require.NoError(t, store.Set(ctx, state.KeyGoogleAuth, TokenData{
		AccessToken:  "ya29.stored",
		RefreshToken: "1//refresh",
		ExpiresAt:    testNow.Add(30 * time.Minute).UnixMilli(),
	}))

	tok, err := newTestFlow(t, ts, store).Token(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "ya29.stored", tok)
	assert.Zero(t, ts.refreshes.Load())
}

func TestWebFlow_RefreshesExpiredToken(t *testing.T) {
	ctx := context.Background()
	ts := newTokenServer(t)
	store := state.NewMemoryStore()
	require.NoError(t, store.Set(ctx, state.KeyGoogleAuth, TokenData{
		AccessToken:  "ya29.stale",
		RefreshToken: "1//refresh",
		ExpiresAt:    testNow.Add(30 * time.Second).UnixMilli(),
	}))

	tok, err := newTestFlow(t, ts, store).Token(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "ya29.refreshed", tok)
	assert.Equal(t, int32(1), ts.refreshes.Load())

	var stored TokenData
	_, err = store.Get(ctx, state.KeyGoogleAuth, &stored)
	require.NoError(t, err)
	assert.Equal(t, "ya29.refreshed", stored.AccessToken)
	assert.Equal(t, "1//refresh", stored.RefreshToken, "refresh token survives a refresh")
	assert.Greater(t, stored.ExpiresAt, testNow.UnixMilli())
}

func TestWebFlow_RefreshFailureNonInteractive(t *testing.T) {
	ctx := context.Background()
	ts := newTokenServer(t)
	ts.failAll.Store(true)
	store := state.NewMemoryStore()
	require.NoError(t, store.Set(ctx, state.KeyGoogleAuth, TokenData{RefreshToken: "1//refresh"}))

	_, err := newTestFlow(t, ts, store).Token(ctx, false)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestWebFlow_NothingStored(t *testing.T) {
	ts := newTokenServer(t)

	_, err := newTestFlow(t, ts, state.NewMemoryStore()).Token(context.Background(), false)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = newTestFlow(t, ts, state.NewMemoryStore()).Token(context.Background(), true)
	assert.ErrorIs(t, err, ErrNotAuthenticated, "interactive without a prompter")
}

func TestWebFlow_InteractiveExchange(t *testing.T) {
	ctx := context.Background()
	ts := newTokenServer(t)
	store := state.NewMemoryStore()

	var shownURL string
	prompt := func(_ context.Context, authURL string) (string, error) {
		shownURL = authURL
		u, err := url.Parse(authURL)
		if err != nil {
			return "", err
		}
		return "http://127.0.0.1/?state=" + u.Query().Get("state") + "&code=the-code", nil
	}

	tok, err := newTestFlow(t, ts, store, WithPrompter(prompt)).Token(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, "ya29.exchanged", tok)
	assert.Equal(t, int32(1), ts.exchanges.Load())

	u, err := url.Parse(shownURL)
	require.NoError(t, err)
	assert.Equal(t, "client-id", u.Query().Get("client_id"))
	assert.Equal(t, "offline", u.Query().Get("access_type"))
	assert.Equal(t, DriveAppDataScope, u.Query().Get("scope"))

	var stored TokenData
	ok, err := store.Get(ctx, state.KeyGoogleAuth, &stored)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1//refresh", stored.RefreshToken)
}

func TestWebFlow_InvalidateAndSignOut(t *testing.T) {
	ctx := context.Background()
	ts := newTokenServer(t)
	store := state.NewMemoryStore()
	require.NoError(t, store.Set(ctx, state.KeyGoogleAuth, TokenData{
		AccessToken:  "ya29.stored",
		RefreshToken: "1//refresh",
		ExpiresAt:    testNow.Add(time.Hour).UnixMilli(),
	}))
	flow := newTestFlow(t, ts, store)

	require.NoError(t, flow.Invalidate(ctx, "ya29.other"))
	tok, err := flow.Token(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "ya29.stored", tok)

	require.NoError(t, flow.Invalidate(ctx, "ya29.stored"))
	tok, err = flow.Token(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "ya29.refreshed", tok)

	require.NoError(t, flow.SignOut(ctx))
	_, err = flow.Token(ctx, false)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestWebFlow_InteractiveStateMismatch(t *testing.T) {
	ctx := context.Background()
	ts := newTokenServer(t)

	prompt := func(context.Context, string) (string, error) {
		return "http://127.0.0.1/?state=forged&code=the-code", nil
	}

	_, err := newTestFlow(t, ts, state.NewMemoryStore(), WithPrompter(prompt)).Token(ctx, true)
	assert.ErrorIs(t, err, ErrStateMismatch)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, int32(0), ts.exchanges.Load(), "code is not exchanged")
}

func TestExtractCode(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		want    string
		wantErr error
	}{
		{"bare code", "  abc\n", "abc", nil},
		{"redirect url", "http://127.0.0.1/?state=s1&code=4%2Fxyz&scope=s", "4/xyz", nil},
		{"denied", "http://127.0.0.1/?state=s1&error=access_denied", "", nil},
		{"wrong state", "http://127.0.0.1/?state=s2&code=abc", "", ErrStateMismatch},
		{"missing state", "http://127.0.0.1/?code=abc", "", ErrStateMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractCode(tt.answer, "s1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTerminalPrompter(t *testing.T) {
	var out strings.Builder
	prompt := TerminalPrompter(strings.NewReader("the-code\n"), &out)

	code, err := prompt(context.Background(), "https://example.com/auth")
	require.NoError(t, err)
	assert.Equal(t, "the-code", code)
	assert.Contains(t, out.String(), "https://example.com/auth")
}

// countingSource records calls and returns a canned result.
type countingSource struct {
	mu          sync.Mutex
	token       string
	err         error
	calls       int
	invalidated []string
	delay       time.Duration
}

func (c *countingSource) Token(context.Context, bool) (string, error) {
	time.Sleep(c.delay)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.token, c.err
}

func (c *countingSource) Invalidate(_ context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, token)
	return nil
}

func TestChain_FallsBack(t *testing.T) {
	ctx := context.Background()
	first := &countingSource{err: ErrNotAuthenticated}
	second := &countingSource{token: "from-second"}

	chain := NewChain(logging.ForTest(t), first, second)
	tok, err := chain.Token(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "from-second", tok)
	assert.Equal(t, 1, first.calls)

	require.NoError(t, chain.Invalidate(ctx, "from-second"))
	assert.Equal(t, []string{"from-second"}, first.invalidated)
	assert.Equal(t, []string{"from-second"}, second.invalidated)
}

func TestChain_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewChain(nil).Token(ctx, false)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = NewChain(nil, &countingSource{err: ErrNotAuthenticated}).Token(ctx, false)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	boom := errors.New("network down")
	_, err = NewChain(nil, &countingSource{err: boom}, &countingSource{err: ErrNotAuthenticated}).Token(ctx, false)
	assert.ErrorIs(t, err, boom)
}

func TestChain_CollapsesConcurrentCalls(t *testing.T) {
	src := &countingSource{token: "tok", delay: 50 * time.Millisecond}
	chain := NewChain(nil, src)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := chain.Token(context.Background(), false)
			assert.NoError(t, err)
			assert.Equal(t, "tok", tok)
		}()
	}
	wg.Wait()

	assert.Less(t, src.calls, 8)
}

func TestChain_SignOut(t *testing.T) {
	ctx := context.Background()
	static := NewStatic("first-party")
	chain := NewChain(nil, static, &countingSource{err: ErrNotAuthenticated})

	require.NoError(t, chain.SignOut(ctx))
	_, err := chain.Token(ctx, false)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
