package switcher

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/trezero/bookmark-bar-switcher/internal/backup"
	"github.com/trezero/bookmark-bar-switcher/internal/bookmarks"
	"github.com/trezero/bookmark-bar-switcher/internal/drive"
	"github.com/trezero/bookmark-bar-switcher/internal/logging"
	"github.com/trezero/bookmark-bar-switcher/internal/state"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	tree    *bookmarks.MemoryTree
	state   *state.MemoryStore
	backups *backup.Store
	engine  *Engine

	container string
	work      string
	home      string
}

// newFixture builds the layout: container with Work (holding W1) and Home,
// Home active, and X in the primary slot.
func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	ctx := t.Context()

	f := &fixture{
		tree:  bookmarks.NewMemoryTree(),
		state: state.NewMemoryStore(),
	}
	f.backups = backup.NewStore(f.state)

	opts = append([]Option{
		WithLogger(logging.ForTest(t)),
		WithClock(func() time.Time { return fixedNow }),
		WithExtensionVersion("1.2.3"),
	}, opts...)
	f.engine = NewEngine(f.tree, f.state, f.backups, opts...)

	f.container = f.mustCreate(t, bookmarks.OtherID, DefaultContainerTitle, "").ID
	f.work = f.mustCreate(t, f.container, "Work", "").ID
	f.mustCreate(t, f.work, "W1", "http://w1")
	f.home = f.mustCreate(t, f.container, "Home", "").ID
	f.mustCreate(t, bookmarks.BarID, "X", "http://x")

	require.NoError(t, f.state.Set(ctx, state.KeyActiveBar, Bar{ID: f.home, Title: "Home"}))
	return f
}

func (f *fixture) mustCreate(t *testing.T, parent, title, url string) bookmarks.Node {
	t.Helper()
	n, err := f.tree.Create(t.Context(), bookmarks.CreateDetails{ParentID: parent, Title: title, URL: url})
	require.NoError(t, err)
	return n
}

func (f *fixture) titles(t *testing.T, id string) []string {
	t.Helper()
	children, err := f.tree.Children(t.Context(), id)
	require.NoError(t, err)
	out := []string{}
	for _, c := range children {
		out = append(out, c.Title)
	}
	return out
}

func (f *fixture) ids(t *testing.T, id string) []string {
	t.Helper()
	children, err := f.tree.Children(t.Context(), id)
	require.NoError(t, err)
	out := []string{}
	for _, c := range children {
		out = append(out, c.ID)
	}
	return out
}

func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return logging.New(logging.Config{Level: slog.LevelDebug, Format: logging.FormatText, Output: buf})
}

func TestInstall_FreshTree(t *testing.T) {
	ctx := t.Context()
	tree := bookmarks.NewMemoryTree()
	st := state.NewMemoryStore()
	e := NewEngine(tree, st, backup.NewStore(st), WithLogger(logging.ForTest(t)))

	bar, err := e.Install(ctx)
	require.NoError(t, err)
	assert.Equal(t, InitialBarTitle, bar.Title)

	container, ok, err := bookmarks.FindChildFolder(ctx, tree, bookmarks.OtherID, DefaultContainerTitle)
	require.NoError(t, err)
	require.True(t, ok)

	bars, err := e.Bars(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Bar{bar}, bars)

	n, err := tree.Get(ctx, bar.ID)
	require.NoError(t, err)
	assert.Equal(t, container.ID, n.ParentID)

	// Installing again is idempotent.
	again, err := e.Install(ctx)
	require.NoError(t, err)
	assert.Equal(t, bar, again)
}

func TestActiveBar_RecreatesMissingFolder(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	require.NoError(t, f.tree.RemoveTree(ctx, f.home))

	bar, err := f.engine.ActiveBar(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, f.home, bar.ID)
	assert.Equal(t, "Home", bar.Title)

	var stored Bar
	ok, err := f.state.Get(ctx, state.KeyActiveBar, &stored)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, bar, stored)
}

func TestActiveBar_PicksUpRename(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	_, err := f.tree.Update(ctx, f.home, "House")
	require.NoError(t, err)

	bar, err := f.engine.ActiveBar(ctx)
	require.NoError(t, err)
	assert.Equal(t, Bar{ID: f.home, Title: "House"}, bar)
}

func TestFindBar(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	byID, err := f.engine.FindBar(ctx, f.work)
	require.NoError(t, err)
	assert.Equal(t, "Work", byID.Title)

	byTitle, err := f.engine.FindBar(ctx, "Home")
	require.NoError(t, err)
	assert.Equal(t, f.home, byTitle.ID)

	_, err = f.engine.FindBar(ctx, "Travel")
	assert.ErrorIs(t, err, ErrBarNotFound)
}

func TestBars_SkipsContainerLinks(t *testing.T) {
	f := newFixture(t)
	f.mustCreate(t, f.container, "stray", "http://stray")

	bars, err := f.engine.Bars(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []Bar{{ID: f.work, Title: "Work"}, {ID: f.home, Title: "Home"}}, bars)
}

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) Upload(ctx context.Context, b backup.BookmarkBackup) (*drive.BackupMeta, error) {
	args := m.Called(ctx, b)
	meta, _ := args.Get(0).(*drive.BackupMeta)
	return meta, args.Error(1)
}

var _ Uploader = (*mockUploader)(nil)

// failingTree fails Move once failAfter moves have succeeded.
type failingTree struct {
	bookmarks.Tree
	failAfter int
	moves     int
}

func (f *failingTree) Move(ctx context.Context, id string, dest bookmarks.Destination) (bookmarks.Node, error) {
	if f.moves >= f.failAfter {
		return bookmarks.Node{}, errors.New("tree unavailable")
	}
	f.moves++
	return f.Tree.Move(ctx, id, dest)
}
