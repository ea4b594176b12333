package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func restore(t *testing.T) {
	t.Helper()

	v, c, d := Version, Commit, Date

	t.Cleanup(func() {
		Version, Commit, Date = v, c, d
	})
}

func TestFillFromBuildInfo(t *testing.T) {
	restore(t)

	Version, Commit, Date = "dev", "none", "unknown"

	fillFromBuildInfo(&debug.BuildInfo{
		Main: debug.Module{Version: "v1.2.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	})

	assert.Equal(t, "v1.2.0", Version)
	assert.Equal(t, "abc123", Commit)
	assert.Equal(t, "2026-01-02T03:04:05Z", Date)
}

func TestFillFromBuildInfo_KeepsLinkerValues(t *testing.T) {
	restore(t)

	Version, Commit, Date = "v0.9.0", "feedbeef", "yesterday"

	fillFromBuildInfo(&debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}},
	})

	assert.Equal(t, "v0.9.0", Version)
	assert.Equal(t, "feedbeef", Commit)
	assert.Equal(t, "yesterday", Date)
}
