package switcher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/trezero/bookmark-bar-switcher/internal/backup"
	"github.com/trezero/bookmark-bar-switcher/internal/bookmarks"
	"github.com/trezero/bookmark-bar-switcher/internal/drive"
	"github.com/trezero/bookmark-bar-switcher/internal/lock"
	"github.com/trezero/bookmark-bar-switcher/internal/state"
)

// Defaults for Engine.
const (
	DefaultContainerTitle = "Bookmark Bars"
	InitialBarTitle       = "My first bookmarks bar"
)

// Sentinel errors.
var (
	ErrBarNotFound  = errors.New("bookmark bar not found")
	ErrInvalidTitle = errors.New("invalid bar title")
	ErrActiveBar    = errors.New("cannot remove the active bar")
)

// Bar identifies one bar by its folder.
type Bar struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Layout names the folders the engine works with.
type Layout struct {
	// PrimaryID is the visible toolbar folder.
	PrimaryID string
	// OtherID is the folder holding the container.
	OtherID string
	// ContainerTitle names the folder holding every bar's folder.
	ContainerTitle string
}

// DefaultLayout matches the browser's permanent folders.
func DefaultLayout() Layout {
	return Layout{
		PrimaryID:      bookmarks.BarID,
		OtherID:        bookmarks.OtherID,
		ContainerTitle: DefaultContainerTitle,
	}
}

// Uploader sends a backup to remote storage.
type Uploader interface {
	Upload(ctx context.Context, b backup.BookmarkBackup) (*drive.BackupMeta, error)
}

// Engine performs bar switches, backups and restores against a tree.
type Engine struct {
	tree    bookmarks.Tree
	state   state.Store
	backups *backup.Store
	lock    *lock.OperationLock
	remote  Uploader
	layout  Layout
	version string
	now     func() time.Time
	logger  *slog.Logger

	uploads sync.WaitGroup
}

// Option configures an Engine.
type Option func(*Engine)

// WithRemote enables background uploads of switch backups when the
// driveAutoBackup flag is set.
func WithRemote(u Uploader) Option {
	return func(e *Engine) {
		e.remote = u
	}
}

// WithLayout overrides the folder layout.
func WithLayout(l Layout) Option {
	return func(e *Engine) {
		e.layout = l
	}
}

// WithLock shares an OperationLock with other components.
func WithLock(l *lock.OperationLock) Option {
	return func(e *Engine) {
		e.lock = l
	}
}

// WithClock overrides the time source for backup timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithExtensionVersion sets the version recorded in backups.
func WithExtensionVersion(v string) Option {
	return func(e *Engine) {
		e.version = v
	}
}

// NewEngine creates an Engine.
func NewEngine(tree bookmarks.Tree, st state.Store, backups *backup.Store, opts ...Option) *Engine {
	e := &Engine{
		tree:    tree,
		state:   st,
		backups: backups,
		lock:    &lock.OperationLock{},
		layout:  DefaultLayout(),
		version: "dev",
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Layout returns the engine's folder layout.
func (e *Engine) Layout() Layout {
	return e.layout
}

// Lock returns the engine's operation lock.
func (e *Engine) Lock() *lock.OperationLock {
	return e.lock
}

// Wait blocks until background uploads started by switches have finished.
func (e *Engine) Wait() {
	e.uploads.Wait()
}

// Install creates the container folder and the active bar if missing.
func (e *Engine) Install(ctx context.Context) (Bar, error) {
	if _, err := e.containerID(ctx); err != nil {
		return Bar{}, err
	}
	return e.ActiveBar(ctx)
}

// containerID returns the container folder id, creating the folder if needed.
func (e *Engine) containerID(ctx context.Context) (string, error) {
	n, ok, err := bookmarks.FindChildFolder(ctx, e.tree, e.layout.OtherID, e.layout.ContainerTitle)
	if err != nil {
		return "", errors.Wrap(err, "locating bar container")
	}
	if ok {
		return n.ID, nil
	}
	n, err = e.tree.Create(ctx, bookmarks.CreateDetails{
		ParentID: e.layout.OtherID,
		Title:    e.layout.ContainerTitle,
	})
	if err != nil {
		return "", errors.Wrap(err, "creating bar container")
	}
	e.logger.Info("created bar container", "id", n.ID, "title", n.Title)
	return n.ID, nil
}

// ActiveBar returns the bar occupying the primary slot. When no pointer is
// stored, or its folder has disappeared, a folder is created for it.
func (e *Engine) ActiveBar(ctx context.Context) (Bar, error) {
	var active Bar
	ok, err := e.state.Get(ctx, state.KeyActiveBar, &active)
	if err != nil {
		return Bar{}, errors.Wrap(err, "loading active bar")
	}

	container, err := e.containerID(ctx)
	if err != nil {
		return Bar{}, err
	}

	if ok && active.ID != "" {
		n, err := e.tree.Get(ctx, active.ID)
		switch {
		case err == nil && n.IsFolder() && n.ParentID == container:
			active.Title = n.Title
			return active, nil
		case err != nil && !errors.Is(err, bookmarks.ErrNodeNotFound):
			return Bar{}, errors.Wrap(err, "reading active bar")
		}
		e.logger.Warn("active bar folder is missing, recreating", "id", active.ID, "title", active.Title)
	}

	title := active.Title
	if title == "" {
		title = InitialBarTitle
	}
	n, err := e.tree.Create(ctx, bookmarks.CreateDetails{ParentID: container, Title: title})
	if err != nil {
		return Bar{}, errors.Wrap(err, "creating active bar")
	}
	active = Bar{ID: n.ID, Title: n.Title}
	if err := e.state.Set(ctx, state.KeyActiveBar, active); err != nil {
		return Bar{}, errors.Wrap(err, "saving active bar")
	}
	return active, nil
}

// Bars lists the bar folders in container order.
func (e *Engine) Bars(ctx context.Context) ([]Bar, error) {
	nodes, err := e.barNodes(ctx)
	if err != nil {
		return nil, err
	}
	bars := make([]Bar, 0, len(nodes))
	for _, n := range nodes {
		bars = append(bars, Bar{ID: n.ID, Title: n.Title})
	}
	return bars, nil
}

func (e *Engine) barNodes(ctx context.Context) ([]bookmarks.Node, error) {
	container, err := e.containerID(ctx)
	if err != nil {
		return nil, err
	}
	children, err := e.tree.Children(ctx, container)
	if err != nil {
		return nil, errors.Wrap(err, "listing bars")
	}
	folders := children[:0]
	for _, c := range children {
		if c.IsFolder() {
			folders = append(folders, c)
		}
	}
	return folders, nil
}

// FindBar resolves a bar by folder id or, failing that, by exact title.
func (e *Engine) FindBar(ctx context.Context, idOrTitle string) (Bar, error) {
	bars, err := e.Bars(ctx)
	if err != nil {
		return Bar{}, err
	}
	for _, b := range bars {
		if b.ID == idOrTitle {
			return b, nil
		}
	}
	for _, b := range bars {
		if b.Title == idOrTitle {
			return b, nil
		}
	}
	return Bar{}, errors.Wrapf(ErrBarNotFound, "%q", idOrTitle)
}

// resolveBar looks up a bar folder in the container; the bool is false
// when id names no bar.
func (e *Engine) resolveBar(ctx context.Context, id string) (Bar, bool, error) {
	n, err := e.requireBar(ctx, id)
	if errors.Is(err, ErrBarNotFound) {
		return Bar{}, false, nil
	}
	if err != nil {
		return Bar{}, false, err
	}
	return Bar{ID: n.ID, Title: n.Title}, true, nil
}
