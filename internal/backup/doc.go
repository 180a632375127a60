// Package backup defines the versioned backup bundle and the bounded local
// history it is kept in.
//
// A [BookmarkBackup] captures every bar at one instant: the bar currently in
// the primary slot (titled [PrimaryBarTitle]) plus every custom bar from the
// container folder. Backups are immutable once built.
//
// # Local History
//
// [Store] keeps the latest backup and a newest-first history bounded by a
// capacity (default [DefaultCapacity]). Both records are written by a single
// [Store.Save]:
//
//	store := backup.NewStore(stateStore, backup.WithCapacity(10))
//	if err := store.Save(ctx, b); err != nil {
//	    return err
//	}
//	latest, err := store.Latest(ctx) // ErrNoBackupsFound when empty
//
// # Export and Import
//
// [Export] and [Import] move a backup in and out of JSON, YAML or TOML. The
// JSON form is the wire form shared with the browser extension and Drive.
package backup
