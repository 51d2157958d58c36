// Package buildinfo carries version metadata stamped at link time:
//
//	go build -ldflags "\
//	  -X 'github.com/m3rciful/schedulebot/core/buildinfo.Version=v0.3.0' \
//	  -X 'github.com/m3rciful/schedulebot/core/buildinfo.Commit=abcdef0' \
//	  -X 'github.com/m3rciful/schedulebot/core/buildinfo.Date=2025-03-01T10:00:00Z'" \
//	  ./cmd/schedulebot
package buildinfo

import "fmt"

// Defaults are what a plain `go run` reports.
var (
	// Version reports the semantic version or tag of the build.
	Version = "dev"
	// Commit reports the source control commit used for the build.
	Commit = "local"
	// Date reports the build timestamp in RFC3339 format.
	Date = ""
)

// String renders the build in one line, e.g. "v0.3.0 (abcdef0, 2025-03-01T10:00:00Z)".
func String() string {
	if Date == "" {
		return fmt.Sprintf("%s (%s)", Version, Commit)
	}
	return fmt.Sprintf("%s (%s, %s)", Version, Commit, Date)
}
