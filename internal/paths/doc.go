// Package paths resolves where bbs keeps its files.
//
// The package wraps github.com/adrg/xdg for cross-platform XDG Base Directory
// compliance:
//
//	| Purpose         | Location                               |
//	|-----------------|----------------------------------------|
//	| configuration   | <ConfigHome>/bbs/config.yaml           |
//	| bookmark tree   | <DataHome>/bbs/bookmarks.json          |
//	| persisted state | <DataHome>/bbs/state/                  |
//
// On Linux these resolve under ~/.config and ~/.local/share.
package paths
