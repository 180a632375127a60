// Package host answers browser-extension requests over the native
// messaging protocol: each message is a 32-bit little-endian length
// followed by that many bytes of JSON.
//
// A request names an action; the response carries success plus the
// action's result or an error message:
//
//	{"id":"7","action":"drive:listBackups"}
//	{"id":"7","success":true,"backups":[{"id":"f1","name":"bbs-backup-1700000000000.json"}]}
package host
