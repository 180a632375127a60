package host

import (
	"context"
	"io"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/trezero/bookmark-bar-switcher/internal/auth"
	"github.com/trezero/bookmark-bar-switcher/internal/backup"
	"github.com/trezero/bookmark-bar-switcher/internal/drive"
)

// ErrUnknownAction is reported for requests naming no supported action.
var ErrUnknownAction = errors.New("unknown action")

// Remote is the remote backup client the host drives.
type Remote interface {
	Token(ctx context.Context, interactive bool) (string, error)
	IsConnected(ctx context.Context) bool
	Upload(ctx context.Context, b backup.BookmarkBackup) (*drive.BackupMeta, error)
	List(ctx context.Context) ([]drive.BackupMeta, error)
	Download(ctx context.Context, fileID string) (backup.BookmarkBackup, error)
	Disconnect(ctx context.Context) error
}

// Engine captures and restores the local bookmark state.
type Engine interface {
	CreateBackup(ctx context.Context) (backup.BookmarkBackup, error)
	RestoreFromBackup(ctx context.Context, b backup.BookmarkBackup) error
}

// Host dispatches requests to a Remote and an Engine.
type Host struct {
	remote      Remote
	engine      Engine
	interactive bool
	logger      *slog.Logger
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) {
		h.logger = l
	}
}

// WithInteractive controls whether drive:getAuthToken may start the consent
// flow when a request asks for it. Hosts reading requests from stdin must
// turn it off.
func WithInteractive(on bool) Option {
	return func(h *Host) {
		h.interactive = on
	}
}

// New creates a Host.
func New(remote Remote, engine Engine, opts ...Option) *Host {
	h := &Host{
		remote:      remote,
		engine:      engine,
		interactive: true,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle runs one request. Failures are reported in the response, never
// as a Go error.
func (h *Host) Handle(ctx context.Context, req Request) Response {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	logger := h.logger.With("request", req.ID, "action", string(req.Action))

	resp, err := h.dispatch(ctx, req)
	resp.ID = req.ID
	if err != nil {
		logger.Warn("request failed", "error", err)
		resp.Success = false
		resp.Error = err.Error()
		return resp
	}
	logger.Debug("request handled")
	resp.Success = true
	return resp
}

func (h *Host) dispatch(ctx context.Context, req Request) (Response, error) {
	switch req.Action {
	case ActionGetAuthToken:
		interactive := req.Interactive && h.interactive
		token, err := h.remote.Token(ctx, interactive)
		if errors.Is(err, auth.ErrNotAuthenticated) && req.Interactive && !interactive {
			return Response{}, errors.Wrap(err, "interactive sign-in is unavailable here, run: bbs drive connect")
		}
		if err != nil {
			return Response{}, err
		}
		return Response{Token: token}, nil

	case ActionIsConnected:
		connected := h.remote.IsConnected(ctx)
		return Response{Connected: &connected}, nil

	case ActionUploadBackup:
		b, err := h.engine.CreateBackup(ctx)
		if err != nil {
			return Response{}, err
		}
		meta, err := h.remote.Upload(ctx, b)
		if err != nil {
			return Response{}, err
		}
		return Response{File: meta}, nil

	case ActionListBackups:
		backups, err := h.remote.List(ctx)
		if err != nil {
			return Response{}, err
		}
		if backups == nil {
			backups = []drive.BackupMeta{}
		}
		return Response{Backups: &backups}, nil

	case ActionDownloadBackup:
		if req.FileID == "" {
			return Response{}, errors.New("fileId is required")
		}
		b, err := h.remote.Download(ctx, req.FileID)
		if err != nil {
			return Response{}, err
		}
		if err := h.engine.RestoreFromBackup(ctx, b); err != nil {
			return Response{}, err
		}
		return Response{}, nil

	case ActionDisconnect:
		return Response{}, h.remote.Disconnect(ctx)
	}
	return Response{}, errors.Wrapf(ErrUnknownAction, "%q", req.Action)
}

// Serve answers framed requests from r on w until r is exhausted or ctx is
// cancelled. Requests are handled one at a time, in order.
func (h *Host) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	h.logger.Info("native messaging host started")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var req Request
		err := ReadMessage(r, &req)
		var decodeErr *decodeError
		switch {
		case errors.Is(err, io.EOF):
			h.logger.Info("native messaging host stopped")
			return nil
		case errors.As(err, &decodeErr):
			h.logger.Warn("malformed request", "error", err)
			if err := WriteMessage(w, Response{Error: err.Error()}); err != nil {
				return err
			}
			continue
		case err != nil:
			return err
		}

		resp := h.Handle(ctx, req)
		err = WriteMessage(w, resp)
		if errors.Is(err, ErrMessageTooLarge) {
			h.logger.Warn("response too large", "request", resp.ID, "error", err)
			err = WriteMessage(w, Response{ID: resp.ID, Error: err.Error()})
		}
		if err != nil {
			return err
		}
	}
}
