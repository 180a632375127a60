package backup

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/trezero/bookmark-bar-switcher/internal/state"
)

// Store keeps the latest backup and a bounded, newest-first history.
type Store struct {
	state    state.Store
	capacity int
	mu       sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithCapacity sets how many backups history keeps. Values below 1 are ignored.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// NewStore creates a Store persisting through st.
func NewStore(st state.Store, opts ...Option) *Store {
	s := &Store{
		state:    st,
		capacity: DefaultCapacity,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Capacity returns the history bound.
func (s *Store) Capacity() int {
	return s.capacity
}

// Save records b as the latest backup and prepends it to history, dropping
// the oldest entries beyond capacity. Both records go out in one write.
func (s *Store) Save(ctx context.Context, b BookmarkBackup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.history(ctx)
	if err != nil {
		return err
	}

	next := make([]BookmarkBackup, 0, min(len(history)+1, s.capacity))
	next = append(next, b)
	next = append(next, history...)
	if len(next) > s.capacity {
		next = next[:s.capacity]
	}

	err = s.state.SetMany(ctx, map[string]any{
		state.KeyLocalBackup:        b,
		state.KeyLocalBackupHistory: next,
	})
	if err != nil {
		return errors.Wrap(err, "saving backup")
	}
	return nil
}

// Latest returns the most recently saved backup, or ErrNoBackupsFound.
func (s *Store) Latest(ctx context.Context) (BookmarkBackup, error) {
	var b BookmarkBackup
	ok, err := s.state.Get(ctx, state.KeyLocalBackup, &b)
	if err != nil {
		return BookmarkBackup{}, errors.Wrap(err, "loading latest backup")
	}
	if !ok {
		return BookmarkBackup{}, ErrNoBackupsFound
	}
	return b, nil
}

// History returns saved backups newest-first; empty when none exist.
func (s *Store) History(ctx context.Context) ([]BookmarkBackup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history(ctx)
}

func (s *Store) history(ctx context.Context) ([]BookmarkBackup, error) {
	var history []BookmarkBackup
	if _, err := s.state.Get(ctx, state.KeyLocalBackupHistory, &history); err != nil {
		return nil, errors.Wrap(err, "loading backup history")
	}
	if history == nil {
		history = []BookmarkBackup{}
	}
	return history, nil
}

// At returns the history entry at index i (0 is newest).
func (s *Store) At(ctx context.Context, i int) (BookmarkBackup, error) {
	history, err := s.History(ctx)
	if err != nil {
		return BookmarkBackup{}, err
	}
	if len(history) == 0 {
		return BookmarkBackup{}, ErrNoBackupsFound
	}
	if i < 0 || i >= len(history) {
		return BookmarkBackup{}, errors.Wrapf(ErrIndexOutOfRange, "index %d (have %d)", i, len(history))
	}
	return history[i], nil
}
