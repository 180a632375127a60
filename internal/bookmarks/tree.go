package bookmarks

import (
	"context"

	"github.com/cockroachdb/errors"
)

// Well-known node ids of the permanent roots.
const (
	RootID  = "0"
	BarID   = "1"
	OtherID = "2"
)

// Sentinel errors returned by Tree implementations.
var (
	ErrNodeNotFound     = errors.New("bookmark node not found")
	ErrNotFolder        = errors.New("bookmark node is not a folder")
	ErrRootModification = errors.New("cannot modify a permanent root node")
	ErrInvalidMove      = errors.New("cannot move a folder into itself or a descendant")
	ErrInvalidIndex     = errors.New("index out of range")
)

// Node is one entry of the live tree. A node is a link iff URL is non-empty.
type Node struct {
	ID       string
	ParentID string
	Title    string
	URL      string
	// Index is the position among the parent's children.
	Index int
}

// IsFolder reports whether n is a folder.
func (n Node) IsFolder() bool {
	return n.URL == ""
}

// CreateDetails describes a node to create. A nil Index appends.
type CreateDetails struct {
	ParentID string
	Title    string
	URL      string
	Index    *int
}

// Destination describes where Move relocates a node. A nil Index appends.
//
// When moving within the same parent, Index refers to positions before the
// node is removed, so moving downward needs the target index plus one.
type Destination struct {
	ParentID string
	Index    *int
}

// Tree is the subset of the bookmark store API the switcher depends on.
type Tree interface {
	Get(ctx context.Context, id string) (Node, error)
	Children(ctx context.Context, id string) ([]Node, error)
	Create(ctx context.Context, d CreateDetails) (Node, error)
	Move(ctx context.Context, id string, dest Destination) (Node, error)
	Update(ctx context.Context, id, title string) (Node, error)
	RemoveTree(ctx context.Context, id string) error
}

// IntPtr returns a pointer to i, for CreateDetails.Index and Destination.Index.
func IntPtr(i int) *int {
	return &i
}

// FindChildFolder returns the first direct child folder of parentID titled title.
// The bool is false when none exists.
func FindChildFolder(ctx context.Context, t Tree, parentID, title string) (Node, bool, error) {
	children, err := t.Children(ctx, parentID)
	if err != nil {
		return Node{}, false, err
	}
	for _, c := range children {
		if c.IsFolder() && c.Title == title {
			return c, true, nil
		}
	}
	return Node{}, false, nil
}
