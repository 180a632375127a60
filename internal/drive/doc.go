// Package drive stores backups in the Google Drive application data folder
// through the Drive v3 REST API.
//
// Every request is authenticated with a token from an auth.TokenSource. A
// 401 response invalidates that token, fetches a fresh one and retries the
// request exactly once. Uploads share a single cooldown: an upload started
// within the cooldown of the last successful upload is skipped without
// error. After each successful upload, backups beyond the configured maximum
// are pruned oldest first; pruning failures are only logged.
package drive
