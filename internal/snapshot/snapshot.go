// Package snapshot converts live bookmark subtrees to and from a portable,
// plain-data form.
//
// A snapshot node is either a [Link] or a [Folder]; the two variants are the
// only implementations of [Node]. The JSON form is the one produced by the
// browser extension: {"title","url"} for links and {"title","children"} for
// folders.
package snapshot

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"

	"github.com/trezero/bookmark-bar-switcher/internal/bookmarks"
)

// ErrCodec marks a malformed snapshot.
var ErrCodec = errors.New("malformed bookmark snapshot")

// Node is a snapshot node: a Link or a Folder.
type Node interface {
	NodeTitle() string
	isNode()
}

// Link is a bookmark with a URL.
type Link struct {
	Title string
	URL   string
}

// Folder is a titled, ordered group of nodes.
type Folder struct {
	Title    string
	Children List
}

func (l Link) NodeTitle() string   { return l.Title }
func (f Folder) NodeTitle() string { return f.Title }
func (Link) isNode()               {}
func (Folder) isNode()             {}

// List is an ordered sequence of sibling nodes.
type List []Node

// Stats counts the links and folders in l, recursively.
func (l List) Stats() (links, folders int) {
	for _, n := range l {
		switch n := n.(type) {
		case Link:
			links++
		case Folder:
			folders++
			cl, cf := n.Children.Stats()
			links += cl
			folders += cf
		}
	}
	return links, folders
}

// Validate reports an ErrCodec for any node that could not be restored:
// nil entries and links without a URL.
func (l List) Validate() error {
	for i, n := range l {
		switch n := n.(type) {
		case Link:
			if n.URL == "" {
				return errors.Wrapf(ErrCodec, "link %q at %d has no url", n.Title, i)
			}
		case Folder:
			if err := n.Children.Validate(); err != nil {
				return errors.Wrapf(err, "in folder %q", n.Title)
			}
		default:
			return errors.Wrapf(ErrCodec, "node %d is empty", i)
		}
	}
	return nil
}

// wireNode is the JSON form of one node.
type wireNode struct {
	Title    *string `json:"title"`
	URL      *string `json:"url,omitempty"`
	Children *List   `json:"children,omitempty"`
}

// MarshalJSON encodes l. Folders always carry a children array.
func (l List) MarshalJSON() ([]byte, error) {
	out := make([]wireNode, 0, len(l))
	for _, n := range l {
		switch n := n.(type) {
		case Link:
			out = append(out, wireNode{Title: &n.Title, URL: &n.URL})
		case Folder:
			children := n.Children
			if children == nil {
				children = List{}
			}
			out = append(out, wireNode{Title: &n.Title, Children: &children})
		default:
			return nil, errors.Wrap(ErrCodec, "cannot encode empty node")
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes l. A node with neither url nor children is an empty
// folder; a node with both, or without a title, is an ErrCodec.
func (l *List) UnmarshalJSON(data []byte) error {
	var raw []wireNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(List, 0, len(raw))
	for i, w := range raw {
		if w.Title == nil {
			return errors.Wrapf(ErrCodec, "node %d has no title", i)
		}
		hasURL := w.URL != nil && *w.URL != ""
		switch {
		case hasURL && w.Children != nil:
			return errors.Wrapf(ErrCodec, "node %q has both url and children", *w.Title)
		case hasURL:
			out = append(out, Link{Title: *w.Title, URL: *w.URL})
		case w.Children != nil:
			out = append(out, Folder{Title: *w.Title, Children: *w.Children})
		default:
			out = append(out, Folder{Title: *w.Title, Children: List{}})
		}
	}
	*l = out
	return nil
}

// ChildReader reads a folder's direct children in order.
type ChildReader interface {
	Children(ctx context.Context, id string) ([]bookmarks.Node, error)
}

// NodeCreator creates nodes in the live tree.
type NodeCreator interface {
	Create(ctx context.Context, d bookmarks.CreateDetails) (bookmarks.Node, error)
}

// Serialize captures the subtree below folderID, preserving sibling order.
// Store errors are returned with context; errors.Is still matches them.
func Serialize(ctx context.Context, r ChildReader, folderID string) (List, error) {
	children, err := r.Children(ctx, folderID)
	if err != nil {
		return nil, errors.Wrapf(err, "reading children of %s", folderID)
	}

	out := make(List, 0, len(children))
	for _, c := range children {
		if !c.IsFolder() {
			out = append(out, Link{Title: c.Title, URL: c.URL})
			continue
		}
		sub, err := Serialize(ctx, r, c.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, Folder{Title: c.Title, Children: sub})
	}
	return out, nil
}

// Restore recreates list under parentID in order. It only adds nodes; the
// caller clears the destination first. Nothing is rolled back on failure.
func Restore(ctx context.Context, w NodeCreator, parentID string, list List) error {
	for _, n := range list {
		switch n := n.(type) {
		case Link:
			if _, err := w.Create(ctx, bookmarks.CreateDetails{ParentID: parentID, Title: n.Title, URL: n.URL}); err != nil {
				return errors.Wrapf(err, "creating link %q", n.Title)
			}
		case Folder:
			folder, err := w.Create(ctx, bookmarks.CreateDetails{ParentID: parentID, Title: n.Title})
			if err != nil {
				return errors.Wrapf(err, "creating folder %q", n.Title)
			}
			if err := Restore(ctx, w, folder.ID, n.Children); err != nil {
				return err
			}
		default:
			return errors.Wrap(ErrCodec, "cannot restore empty node")
		}
	}
	return nil
}
