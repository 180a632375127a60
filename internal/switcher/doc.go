// Package switcher swaps named bookmark bars in and out of the browser's
// primary bookmarks bar.
//
// Every bar owns a folder inside a container folder ("Bookmark Bars" under
// "Other bookmarks"). The active bar's folder stays in the container but is
// empty: its bookmarks live in the primary slot. A switch moves the primary
// slot's children back into the outgoing bar's folder and the incoming
// bar's children into the primary slot. Moves keep node ids.
//
// An [Engine] serializes tree-mutating work with a lock.OperationLock. A
// switch that loses the race is skipped silently; a restore that loses it
// fails with lock.ErrContention. Before mutating, a switch saves a backup and
// optionally uploads it in the background; the upload never affects the
// switch's result. A switch or restore that fails midway is not rolled back.
package switcher
