// Package buildinfo reports which pipedag build is running.
//
// Release builds set the variables with -ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/pipedag/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/pipedag/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/pipedag/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/pipedag
//
// Otherwise Commit and Date fall back to the VCS stamp the go command
// embeds, when there is one.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && Commit == "none":
			Commit = s.Value
		case s.Key == "vcs.time" && Date == "unknown":
			Date = s.Value
		}
	}
}

// String is the multi-line form printed by "pipedag --version".
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template is String as a cobra version template.
func Template() string {
	return "{{.Name}} " + fmt.Sprintf("version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
