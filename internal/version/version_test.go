package version

import (
	"runtime/debug"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func withBuild(t *testing.T, ver, commit, built string, info *debug.BuildInfo) {
	t.Helper()
	oldVersion, oldCommit, oldTime, oldRead := Version, GitCommit, BuildTime, readBuildInfo
	t.Cleanup(func() {
		Version, GitCommit, BuildTime, readBuildInfo = oldVersion, oldCommit, oldTime, oldRead
	})

	Version, GitCommit, BuildTime = ver, commit, built
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return info, info != nil
	}
}

func TestGet_Ldflags(t *testing.T) {
	withBuild(t, "v1.2.3", "0123456789abcdef", "2025-03-01T10:00:00Z", nil)

	info := Get()
	assert.Equal(t, "v1.2.3", info.Version)
	assert.Equal(t, "0123456789abcdef", info.GitCommit)
	assert.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), info.BuildTime)
	assert.True(t, info.IsRelease())
	assert.False(t, info.Dirty)
	assert.Equal(t, "v1.2.3 (0123456)", info.Short())
	assert.Contains(t, info.Detailed(), "Build type: release")
	assert.Contains(t, info.Detailed(), "Built: 2025-03-01T10:00:00Z")
}

func TestGet_FromBuildInfo(t *testing.T) {
	withBuild(t, "dev", "unknown", "unknown", &debug.BuildInfo{
		Main: debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "fedcba9876543210"},
			{Key: "vcs.modified", Value: "true"},
		},
	})

	info := Get()
	assert.Equal(t, "dev-fedcba9", info.Version)
	assert.Equal(t, "fedcba9876543210", info.GitCommit)
	assert.True(t, info.BuildTime.IsZero())
	assert.True(t, info.Dirty)
	assert.False(t, info.IsRelease())
	assert.Equal(t, "dev-fedcba9", info.Short())

	detailed := info.Detailed()
	assert.Contains(t, detailed, "Working directory: dirty")
	assert.Contains(t, detailed, "Build type: development")
	assert.NotContains(t, detailed, "Built:")
}

func TestGet_ModuleVersion(t *testing.T) {
	withBuild(t, "dev", "unknown", "unknown", &debug.BuildInfo{
		Main: debug.Module{Version: "v0.4.0"},
	})

	info := Get()
	assert.Equal(t, "v0.4.0", info.Version)
	assert.Equal(t, "unknown", info.GitCommit)
	assert.Equal(t, "v0.4.0", info.Short())
	assert.NotContains(t, info.Detailed(), "Commit:")
}

func TestGet_NoBuildInfo(t *testing.T) {
	withBuild(t, "dev", "unknown", "garbage", nil)

	info := Get()
	assert.Equal(t, "dev", info.Version)
	assert.Equal(t, "dev", info.Short())
	assert.True(t, info.BuildTime.IsZero())
}

func TestParseTime(t *testing.T) {
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), parseTime("2024-01-02T03:04:05"))
	assert.True(t, parseTime("").IsZero())
	assert.True(t, parseTime("yesterday").IsZero())
}
