// Package version carries build metadata stamped via -ldflags.
package version

import "runtime/debug"

const unknown = "unknown"

// Build metadata, overridden at link time:
//
//	-X github.com/Sumatoshi-tech/pacelog/pkg/version.Version=v1.0.0
var (
	Version = "dev"
	Commit  = unknown
	Date    = unknown
)

// InitBinaryVersion fills unset metadata from the module build info embedded
// by the Go toolchain, so `go install` builds report a useful version.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	apply(info)
}

func apply(info *debug.BuildInfo) {
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == unknown {
				Commit = s.Value
			}
		case "vcs.time":
			if Date == unknown {
				Date = s.Value
			}
		}
	}
}

// String renders the metadata on one line.
func String() string {
	return Version + " (commit: " + Commit + ", built: " + Date + ")"
}
