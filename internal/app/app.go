// Package app assembles the bookmark tree, state, backup store, Drive
// client and switch engine from configuration.
package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/trezero/bookmark-bar-switcher/internal/auth"
	"github.com/trezero/bookmark-bar-switcher/internal/backup"
	"github.com/trezero/bookmark-bar-switcher/internal/bookmarks"
	"github.com/trezero/bookmark-bar-switcher/internal/config"
	"github.com/trezero/bookmark-bar-switcher/internal/drive"
	bbserrors "github.com/trezero/bookmark-bar-switcher/internal/errors"
	"github.com/trezero/bookmark-bar-switcher/internal/host"
	"github.com/trezero/bookmark-bar-switcher/internal/paths"
	"github.com/trezero/bookmark-bar-switcher/internal/state"
	"github.com/trezero/bookmark-bar-switcher/internal/switcher"
)

// App holds the wired components for one process.
type App struct {
	Config  *config.Config
	Tree    bookmarks.Tree
	State   state.Store
	Backups *backup.Store
	Auth    *auth.Chain
	Drive   *drive.Client
	Engine  *switcher.Engine

	logger  *slog.Logger
	closers []io.Closer
}

type options struct {
	logger     *slog.Logger
	httpClient *http.Client
	prompter   auth.Prompter
	version    string
	tree       bookmarks.Tree
}

// Option configures New.
type Option func(*options)

// WithLogger sets the logger handed to every component.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithHTTPClient sets the client used for Drive and OAuth requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithPrompter sets how the interactive OAuth flow asks for a code.
func WithPrompter(p auth.Prompter) Option {
	return func(o *options) {
		o.prompter = p
	}
}

// WithVersion sets the version recorded in backups.
func WithVersion(v string) Option {
	return func(o *options) {
		o.version = v
	}
}

// WithTree replaces the configured file tree.
func WithTree(t bookmarks.Tree) Option {
	return func(o *options) {
		o.tree = t
	}
}

// New builds an App from cfg. Close releases what it opened.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	o := options{logger: slog.Default(), version: "dev"}
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Config: cfg, logger: o.logger}

	st, err := a.openState(ctx, cfg.State)
	if err != nil {
		return nil, err
	}
	a.State = st

	a.Tree = o.tree
	if a.Tree == nil {
		if err := paths.EnsureDir(filepath.Dir(cfg.Tree.File), paths.DefaultDirPerm); err != nil {
			_ = a.Close()
			return nil, errors.Wrap(err, "creating tree directory")
		}
		tree, err := bookmarks.OpenFileTree(cfg.Tree.File)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.Tree = tree
	}

	a.Backups = backup.NewStore(a.State, backup.WithCapacity(cfg.HistorySize))

	flowOpts := []auth.WebFlowOption{auth.WithLogger(o.logger)}
	if o.httpClient != nil {
		flowOpts = append(flowOpts, auth.WithHTTPClient(o.httpClient))
	}
	if o.prompter != nil {
		flowOpts = append(flowOpts, auth.WithPrompter(o.prompter))
	}
	flow := auth.NewWebFlow(auth.WebFlowConfig{
		ClientID:     cfg.OAuth.ClientID,
		ClientSecret: cfg.OAuth.ClientSecret,
		RedirectURL:  cfg.OAuth.RedirectURL,
		AuthURL:      cfg.OAuth.AuthURL,
		TokenURL:     cfg.OAuth.TokenURL,
		Scopes:       cfg.OAuth.Scopes,
	}, a.State, flowOpts...)
	a.Auth = auth.NewChain(o.logger, auth.NewStatic(cfg.Drive.Token), flow)

	driveOpts := []drive.Option{
		drive.WithBaseURLs(cfg.Drive.APIBase, cfg.Drive.UploadBase),
		drive.WithSpace(cfg.Drive.Space),
		drive.WithNamePrefix(cfg.Drive.NamePrefix),
		drive.WithMaxBackups(cfg.Drive.MaxBackups),
		drive.WithCooldown(cfg.Drive.UploadCooldown),
		drive.WithLogger(o.logger),
	}
	if o.httpClient != nil {
		driveOpts = append(driveOpts, drive.WithHTTPClient(o.httpClient))
	}
	a.Drive = drive.NewClient(a.Auth, driveOpts...)

	a.Engine = switcher.NewEngine(a.Tree, a.State, a.Backups,
		switcher.WithRemote(a.Drive),
		switcher.WithLayout(switcher.Layout{
			PrimaryID:      cfg.Tree.PrimaryID,
			OtherID:        cfg.Tree.OtherID,
			ContainerTitle: cfg.Tree.ContainerTitle,
		}),
		switcher.WithExtensionVersion(o.version),
		switcher.WithLogger(o.logger),
	)

	return a, nil
}

func (a *App) openState(ctx context.Context, cfg config.StateConfig) (state.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return state.NewMemoryStore(), nil
	case config.BackendRedis:
		rs := state.NewRedisStore(state.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, err
		}
		a.closers = append(a.closers, rs)
		a.logger.Debug("using redis state", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
		return rs, nil
	case config.BackendFile, "":
		if err := paths.EnsureDir(cfg.Dir, paths.DefaultDirPerm); err != nil {
			return nil, errors.Wrap(err, "creating state directory")
		}
		return state.NewFileStore(cfg.Dir), nil
	}
	return nil, errors.Wrapf(bbserrors.ErrInvalidConfig, "unknown state backend %q", cfg.Backend)
}

// Host returns a native messaging host over the app's components.
func (a *App) Host(opts ...host.Option) *host.Host {
	return host.New(a.Drive, a.Engine, append([]host.Option{host.WithLogger(a.logger)}, opts...)...)
}

// Close waits for background uploads and closes opened stores.
func (a *App) Close() error {
	if a.Engine != nil {
		a.Engine.Wait()
	}
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}
