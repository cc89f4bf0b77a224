package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApply(t *testing.T) {
	oldVersion, oldCommit, oldDate := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = oldVersion, oldCommit, oldDate })

	Version, Commit, Date = "dev", unknown, unknown

	apply(&debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	})

	assert.Equal(t, "v0.3.1", Version)
	assert.Equal(t, "abc123", Commit)
	assert.Equal(t, "v0.3.1 (commit: abc123, built: 2026-01-02T03:04:05Z)", String())
}

func TestApply_KeepsLinkerValues(t *testing.T) {
	oldVersion, oldCommit, oldDate := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = oldVersion, oldCommit, oldDate })

	Version, Commit, Date = "v9.9.9", "stamped", unknown

	apply(&debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "other"}},
	})

	assert.Equal(t, "v9.9.9", Version)
	assert.Equal(t, "stamped", Commit)
	assert.Equal(t, unknown, Date)
}
