// Package version holds build metadata injected at link time.
package version

import (
	"runtime/debug"
)

// Set with -ldflags "-X github.com/Sumatoshi-tech/locdiff/pkg/version.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const (
	vcsRevisionKey = "vcs.revision"
	vcsTimeKey     = "vcs.time"
	develVersion   = "(devel)"
)

// InitBinaryVersion fills unset fields from the embedded module build info,
// so binaries installed with "go install" still report something useful.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	fillFromBuildInfo(info)
}

func fillFromBuildInfo(info *debug.BuildInfo) {
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != develVersion {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case vcsRevisionKey:
			if Commit == "none" {
				Commit = setting.Value
			}
		case vcsTimeKey:
			if Date == "unknown" {
				Date = setting.Value
			}
		}
	}
}
