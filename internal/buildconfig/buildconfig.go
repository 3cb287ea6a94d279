package buildconfig

import "fmt"

// Build-time variables injected via ldflags:
//
//	-X github.com/Harshitk-cp/ghostprotocol/internal/buildconfig.version=v0.3.0
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func Version() string {
	return version
}

func Commit() string {
	return commit
}

// VersionInfo is served by /health and printed by ghostctl version.
func VersionInfo() map[string]string {
	return map[string]string{
		"version": version,
		"commit":  commit,
		"date":    date,
	}
}

func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
}
