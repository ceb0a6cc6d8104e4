package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func stubBuildInfo(t *testing.T, bi *debug.BuildInfo) {
	t.Helper()
	old := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, bi != nil }
	t.Cleanup(func() { readBuildInfo = old })
}

func TestShort_InjectedValues(t *testing.T) {
	stubBuildInfo(t, nil)
	Version, BuildDate = "1.2.3", "2024-05-01T10:00:00Z"
	defer func() { Version, BuildDate = "dev", "unknown" }()

	short := Short()
	if !strings.HasPrefix(short, "smartrepo version 1.2.3 (2024-05-01), analyzer ") {
		t.Errorf("unexpected short version %q", short)
	}
	if !strings.HasSuffix(short, "/releases/tag/v1.2.3") {
		t.Errorf("release link missing in %q", short)
	}
	if long := Long(); !strings.Contains(long, "smartrepo has version 1.2.3") {
		t.Errorf("unexpected long version %q", long)
	}
}

func TestGet_FallsBackToBuildInfo(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{
		Main: debug.Module{Version: "v0.4.0", Sum: "h1:abc"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "deadbeef"},
			{Key: "vcs.time", Value: "2024-06-02T08:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	})

	info := Get()
	if info.Version != "0.4.0" || info.GitCommit != "deadbeef" || info.ModSum != "h1:abc" {
		t.Errorf("build info not applied: %+v", info)
	}
	if info.Modified != "true" || info.BuildDate != "2024-06-02T08:00:00Z" {
		t.Errorf("vcs settings not applied: %+v", info)
	}
	if info.Analyzer == "" {
		t.Error("analyzer version must be set")
	}
}

func TestGet_DevelBuildKeepsDev(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	if v := Get().Version; v != "dev" {
		t.Errorf("version = %q", v)
	}
}
