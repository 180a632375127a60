package bookmarks

import (
	"context"
	"os"
	"strconv"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/trezero/bookmark-bar-switcher/pkg/fileutil"
)

// fileNode is the on-disk form of one node.
type fileNode struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	URL      string     `json:"url,omitempty"`
	Children []fileNode `json:"children,omitempty"`
}

// fileData is the on-disk form of a whole tree.
type fileData struct {
	NextID int64    `json:"nextId"`
	Root   fileNode `json:"root"`
}

// FileTree is a MemoryTree persisted to a JSON file after every mutation.
//
// A mutation that succeeds in memory but fails to persist returns the write
// error; the in-memory tree keeps the change.
type FileTree struct {
	*MemoryTree

	path   string
	saveMu sync.Mutex
}

var _ Tree = (*FileTree)(nil)

// OpenFileTree loads the tree stored at path, or starts a new tree with only
// the permanent roots when the file does not exist yet.
func OpenFileTree(path string) (*FileTree, error) {
	ft := &FileTree{path: path}

	var data fileData
	err := fileutil.ReadJSON(path, &data)
	switch {
	case err == nil:
		mt, err := memoryTreeFrom(data)
		if err != nil {
			return nil, errors.Wrapf(err, "loading %s", path)
		}
		ft.MemoryTree = mt
	case errors.Is(err, os.ErrNotExist):
		ft.MemoryTree = NewMemoryTree()
	default:
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return ft, nil
}

// Path returns the backing file path.
func (f *FileTree) Path() string {
	return f.path
}

// Create adds a node and persists the tree.
func (f *FileTree) Create(ctx context.Context, d CreateDetails) (Node, error) {
	n, err := f.MemoryTree.Create(ctx, d)
	if err != nil {
		return Node{}, err
	}
	return n, f.save()
}

// Move relocates a node and persists the tree.
func (f *FileTree) Move(ctx context.Context, id string, dest Destination) (Node, error) {
	n, err := f.MemoryTree.Move(ctx, id, dest)
	if err != nil {
		return Node{}, err
	}
	return n, f.save()
}

// Update renames a node and persists the tree.
func (f *FileTree) Update(ctx context.Context, id, title string) (Node, error) {
	n, err := f.MemoryTree.Update(ctx, id, title)
	if err != nil {
		return Node{}, err
	}
	return n, f.save()
}

// RemoveTree deletes a subtree and persists the tree.
func (f *FileTree) RemoveTree(ctx context.Context, id string) error {
	if err := f.MemoryTree.RemoveTree(ctx, id); err != nil {
		return err
	}
	return f.save()
}

func (f *FileTree) save() error {
	f.saveMu.Lock()
	defer f.saveMu.Unlock()

	if err := fileutil.AtomicWriteJSON(f.path, f.dump()); err != nil {
		return errors.Wrapf(err, "saving bookmarks to %s", f.path)
	}
	return nil
}

func (t *MemoryTree) dump() fileData {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var walk func(e *entry) fileNode
	walk = func(e *entry) fileNode {
		fn := fileNode{ID: e.id, Title: e.title, URL: e.url}
		for _, cid := range e.children {
			fn.Children = append(fn.Children, walk(t.nodes[cid]))
		}
		return fn
	}
	return fileData{NextID: t.nextID, Root: walk(t.nodes[RootID])}
}

func memoryTreeFrom(data fileData) (*MemoryTree, error) {
	if data.Root.ID != RootID {
		return nil, errors.Newf("root node id %q, want %q", data.Root.ID, RootID)
	}
	t := &MemoryTree{nodes: make(map[string]*entry), nextID: data.NextID}

	var walk func(fn fileNode, parentID string) error
	walk = func(fn fileNode, parentID string) error {
		if _, dup := t.nodes[fn.ID]; dup {
			return errors.Newf("duplicate node id %q", fn.ID)
		}
		e := &entry{id: fn.ID, parentID: parentID, title: fn.Title, url: fn.URL}
		t.nodes[fn.ID] = e
		if n, err := strconv.ParseInt(fn.ID, 10, 64); err == nil && n >= t.nextID {
			t.nextID = n + 1
		}
		for _, c := range fn.Children {
			e.children = append(e.children, c.ID)
			if err := walk(c, fn.ID); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(data.Root, ""); err != nil {
		return nil, err
	}

	for _, id := range []string{BarID, OtherID} {
		e, ok := t.nodes[id]
		if !ok || e.parentID != RootID {
			return nil, errors.Newf("missing permanent node %q", id)
		}
	}
	return t, nil
}
