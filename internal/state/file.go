package state

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/trezero/bookmark-bar-switcher/pkg/fileutil"
)

// FileStore keeps one JSON file per key under a directory. Each write is
// atomic; SetMany writes keys one after another.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore rooted at dir. The directory is created
// on first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the directory holding the record files.
func (f *FileStore) Dir() string {
	return f.dir
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FileStore) Get(ctx context.Context, key string, v any) (bool, error) {
	if err := validKey(key); err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := fileutil.ReadFileWithLimit(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, errors.Wrapf(err, "reading state %s", key)
	}
	return true, decode(key, data, v)
}

func (f *FileStore) Set(ctx context.Context, key string, v any) error {
	return f.SetMany(ctx, map[string]any{key: v})
}

func (f *FileStore) SetMany(ctx context.Context, values map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	encoded := make(map[string][]byte, len(values))
	for k, v := range values {
		data, err := encode(k, v)
		if err != nil {
			return err
		}
		encoded[k] = append(data, '\n')
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for k, data := range encoded {
		if err := fileutil.AtomicWriteFile(f.path(k), data, 0o600); err != nil {
			return errors.Wrapf(err, "writing state %s", k)
		}
	}
	return nil
}

func (f *FileStore) Delete(ctx context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path(key)); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "deleting state %s", key)
	}
	return nil
}
