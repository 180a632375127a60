package bookmarks

import (
	"context"
	"slices"
	"strconv"
	"sync"

	"github.com/cockroachdb/errors"
)

// Default titles of the permanent roots.
const (
	BarTitle   = "Bookmarks bar"
	OtherTitle = "Other bookmarks"
)

type entry struct {
	id       string
	parentID string
	title    string
	url      string
	children []string
}

// MemoryTree is an in-process Tree with the browser's permanent roots:
// RootID holds BarID and OtherID, and none of the three can be moved,
// renamed or removed.
//
// MemoryTree is safe for concurrent use.
type MemoryTree struct {
	mu     sync.RWMutex
	nodes  map[string]*entry
	nextID int64
}

var _ Tree = (*MemoryTree)(nil)

// NewMemoryTree creates a tree holding only the permanent roots.
func NewMemoryTree() *MemoryTree {
	t := &MemoryTree{
		nodes:  make(map[string]*entry),
		nextID: 3,
	}
	t.nodes[RootID] = &entry{id: RootID, children: []string{BarID, OtherID}}
	t.nodes[BarID] = &entry{id: BarID, parentID: RootID, title: BarTitle}
	t.nodes[OtherID] = &entry{id: OtherID, parentID: RootID, title: OtherTitle}
	return t
}

func isPermanent(id string) bool {
	return id == RootID || id == BarID || id == OtherID
}

// Get returns the node with the given id.
func (t *MemoryTree) Get(ctx context.Context, id string) (Node, error) {
	if err := ctx.Err(); err != nil {
		return Node{}, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, err := t.lookup(id)
	if err != nil {
		return Node{}, err
	}
	return t.node(e), nil
}

// Children returns the direct children of a folder in order.
func (t *MemoryTree) Children(ctx context.Context, id string) ([]Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, err := t.lookupFolder(id)
	if err != nil {
		return nil, err
	}
	out := make([]Node, 0, len(e.children))
	for i, cid := range e.children {
		c := t.nodes[cid]
		out = append(out, Node{ID: c.id, ParentID: e.id, Title: c.title, URL: c.url, Index: i})
	}
	return out, nil
}

// Create adds a link or folder under d.ParentID.
func (t *MemoryTree) Create(ctx context.Context, d CreateDetails) (Node, error) {
	if err := ctx.Err(); err != nil {
		return Node{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if d.ParentID == RootID {
		return Node{}, errors.Wrap(ErrRootModification, "create under root")
	}
	parent, err := t.lookupFolder(d.ParentID)
	if err != nil {
		return Node{}, err
	}
	idx := len(parent.children)
	if d.Index != nil {
		if *d.Index < 0 || *d.Index > len(parent.children) {
			return Node{}, errors.Wrapf(ErrInvalidIndex, "create at %d", *d.Index)
		}
		idx = *d.Index
	}

	e := &entry{
		id:       strconv.FormatInt(t.nextID, 10),
		parentID: parent.id,
		title:    d.Title,
		url:      d.URL,
	}
	t.nextID++
	t.nodes[e.id] = e
	parent.children = slices.Insert(parent.children, idx, e.id)

	return t.node(e), nil
}

// Move relocates a node (with its whole subtree) under dest.ParentID.
// Ids are preserved.
func (t *MemoryTree) Move(ctx context.Context, id string, dest Destination) (Node, error) {
	if err := ctx.Err(); err != nil {
		return Node{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if isPermanent(id) {
		return Node{}, errors.Wrapf(ErrRootModification, "move %s", id)
	}
	e, err := t.lookup(id)
	if err != nil {
		return Node{}, err
	}
	if dest.ParentID == RootID {
		return Node{}, errors.Wrap(ErrRootModification, "move under root")
	}
	newParent, err := t.lookupFolder(dest.ParentID)
	if err != nil {
		return Node{}, err
	}
	for p := newParent; p != nil; p = t.nodes[p.parentID] {
		if p.id == e.id {
			return Node{}, errors.Wrapf(ErrInvalidMove, "move %s into %s", id, dest.ParentID)
		}
	}

	idx := len(newParent.children)
	if dest.Index != nil {
		if *dest.Index < 0 || *dest.Index > len(newParent.children) {
			return Node{}, errors.Wrapf(ErrInvalidIndex, "move to %d", *dest.Index)
		}
		idx = *dest.Index
	}

	oldParent := t.nodes[e.parentID]
	oldIdx := slices.Index(oldParent.children, e.id)
	if oldParent == newParent && idx > oldIdx {
		idx--
	}
	oldParent.children = slices.Delete(oldParent.children, oldIdx, oldIdx+1)
	if idx > len(newParent.children) {
		idx = len(newParent.children)
	}
	newParent.children = slices.Insert(newParent.children, idx, e.id)
	e.parentID = newParent.id

	return t.node(e), nil
}

// Update changes a node's title.
func (t *MemoryTree) Update(ctx context.Context, id, title string) (Node, error) {
	if err := ctx.Err(); err != nil {
		return Node{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if isPermanent(id) {
		return Node{}, errors.Wrapf(ErrRootModification, "update %s", id)
	}
	e, err := t.lookup(id)
	if err != nil {
		return Node{}, err
	}
	e.title = title
	return t.node(e), nil
}

// RemoveTree deletes a node and everything beneath it.
func (t *MemoryTree) RemoveTree(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if isPermanent(id) {
		return errors.Wrapf(ErrRootModification, "remove %s", id)
	}
	e, err := t.lookup(id)
	if err != nil {
		return err
	}
	parent := t.nodes[e.parentID]
	if i := slices.Index(parent.children, id); i >= 0 {
		parent.children = slices.Delete(parent.children, i, i+1)
	}
	t.drop(e)
	return nil
}

func (t *MemoryTree) drop(e *entry) {
	for _, cid := range e.children {
		t.drop(t.nodes[cid])
	}
	delete(t.nodes, e.id)
}

func (t *MemoryTree) lookup(id string) (*entry, error) {
	e, ok := t.nodes[id]
	if !ok {
		return nil, errors.Wrapf(ErrNodeNotFound, "id %q", id)
	}
	return e, nil
}

func (t *MemoryTree) lookupFolder(id string) (*entry, error) {
	e, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	if e.url != "" {
		return nil, errors.Wrapf(ErrNotFolder, "id %q", id)
	}
	return e, nil
}

// node converts e to a Node. Callers hold t.mu.
func (t *MemoryTree) node(e *entry) Node {
	n := Node{ID: e.id, ParentID: e.parentID, Title: e.title, URL: e.url}
	if p, ok := t.nodes[e.parentID]; ok {
		n.Index = slices.Index(p.children, e.id)
	}
	return n
}
