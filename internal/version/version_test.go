package version

import (
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func stamp(t *testing.T, v, c, d string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, Commit, Date
	t.Cleanup(func() {
		Version, Commit, Date = origVersion, origCommit, origDate
	})
	Version, Commit, Date = v, c, d
}

func TestInfo(t *testing.T) {
	info := Info()
	assert.Contains(t, info, "meshbuilder")
	assert.Contains(t, info, runtime.Version())
	assert.Contains(t, info, runtime.GOOS+"/"+runtime.GOARCH)
}

func TestInfoStamped(t *testing.T) {
	stamp(t, "0.3.0", "9f8e7d6c5b4a", "2026-10-01")

	info := Info()
	assert.Contains(t, info, "0.3.0")
	assert.Contains(t, info, "9f8e7d6")
	assert.NotContains(t, info, "9f8e7d6c5b4a")
	assert.Contains(t, info, "2026-10-01")
	assert.Equal(t, "meshbuilder/0.3.0", UserAgent())
}

func TestBuildFill(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/soyeahso/meshbuilder", Version: "v0.4.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789ab"},
			{Key: "vcs.time", Value: "2026-09-30T12:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	b := Build{Version: "dev", Commit: "unknown", Date: "unknown"}
	b.fill(bi)
	assert.Equal(t, Build{Version: "v0.4.1", Commit: "0123456789ab", Date: "2026-09-30T12:00:00Z", Dirty: true}, b)

	stamped := Build{Version: "0.3.0", Commit: "abc", Date: "2026-10-01"}
	stamped.fill(bi)
	assert.Equal(t, "0.3.0", stamped.Version)
	assert.Equal(t, "abc", stamped.Commit)
	assert.Equal(t, "2026-10-01", stamped.Date)

	devel := Build{Version: "dev"}
	devel.fill(&debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	assert.Equal(t, "dev", devel.Version)
}

func TestShort(t *testing.T) {
	for in, want := range map[string]string{
		"":         "",
		"abc":      "abc",
		"1234567":  "1234567",
		"12345678": "1234567",
	} {
		assert.Equal(t, want, short(in), in)
	}
}
