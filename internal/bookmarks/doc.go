// Package bookmarks defines the hierarchical bookmark store that bars live
// in, plus two implementations of it.
//
// The store is an external collaborator: the switcher only ever reaches it
// through the [Tree] interface, and every call is treated as a point at
// which another operation may interleave. [MemoryTree] mirrors the browser's
// tree semantics (fixed roots, move-index adjustment) and [FileTree] persists
// a MemoryTree as JSON after every mutation so the CLI has a real store to
// operate on.
package bookmarks
