// Package cmd holds the bbs build metadata injected via ldflags.
package cmd

import "strings"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// BackupVersion is the version string stamped into backups. Development
// builds carry the short commit so restored backups can be traced.
func BackupVersion() string {
	v := strings.TrimPrefix(Version, "v")
	if v != "dev" || Commit == "none" {
		return v
	}
	c := Commit
	if len(c) > 7 {
		c = c[:7]
	}
	return v + "+" + c
}
