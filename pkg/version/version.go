// Package version carries build metadata for the iosrecon binaries.
package version

import "fmt"

// Version, GitCommit, and BuildDate are set at build time via ldflags:
//
//	go build -ldflags "-X github.com/amalmborg97/cisco.ios/pkg/version.Version=v1.0.0 \
//	  -X github.com/amalmborg97/cisco.ios/pkg/version.GitCommit=abc1234 \
//	  -X github.com/amalmborg97/cisco.ios/pkg/version.BuildDate=2026-01-01T00:00:00Z"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns a formatted version string for display.
func Info() string {
	return Version + " (" + GitCommit + ") built " + BuildDate
}

// Line returns the one-line version banner of tool.
func Line(tool string) string {
	if Version == "dev" {
		return fmt.Sprintf("%s dev build", tool)
	}
	return fmt.Sprintf("%s %s (%s)", tool, Version, GitCommit)
}
