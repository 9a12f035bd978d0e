// Package buildinfo provides build-time version information.
//
// Variables are set via ldflags during build:
//
//	go build -ldflags "-X github.com/matzehuels/glitchgen/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/glitchgen/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/glitchgen/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import (
	"fmt"
	"strings"
)

var (
	// Version is the semantic version (e.g., "v1.2.3").
	// Set via ldflags: -X github.com/matzehuels/glitchgen/pkg/buildinfo.Version=...
	Version = "dev"

	// Commit is the git commit SHA.
	// Set via ldflags: -X github.com/matzehuels/glitchgen/pkg/buildinfo.Commit=...
	Commit = "none"

	// Date is the build timestamp.
	// Set via ldflags: -X github.com/matzehuels/glitchgen/pkg/buildinfo.Date=...
	Date = "unknown"
)

// String returns the formatted build information.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}

// Title returns the short product title shown in interactive headers,
// e.g. "glitchgen v1.2" (trailing ".0" components are dropped).
func Title() string {
	v := strings.TrimPrefix(Version, "v")
	for strings.HasSuffix(v, ".0") && strings.Count(v, ".") > 0 {
		v = strings.TrimSuffix(v, ".0")
	}
	if v == "dev" {
		return "glitchgen dev"
	}
	return "glitchgen v" + v
}
