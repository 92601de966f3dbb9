package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Release builds stamp these with ldflags:
//
//	go build -ldflags "-X github.com/soyeahso/meshbuilder/internal/version.Version=0.3.0
//	  -X github.com/soyeahso/meshbuilder/internal/version.Commit=abc123
//	  -X github.com/soyeahso/meshbuilder/internal/version.Date=2026-01-01"
//
// Unstamped builds fall back to the module and VCS info Go embeds.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Build describes the running binary.
type Build struct {
	Version  string `json:"version"`
	Commit   string `json:"commit"`
	Date     string `json:"date"`
	Dirty    bool   `json:"dirty,omitempty"`
	Go       string `json:"go"`
	Platform string `json:"platform"`
}

// Current merges the ldflags values with the embedded build info.
func Current() Build {
	b := Build{
		Version:  Version,
		Commit:   Commit,
		Date:     Date,
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		b.fill(bi)
	}
	return b
}

// fill only replaces values the linker left at their defaults.
func (b *Build) fill(bi *debug.BuildInfo) {
	if b.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		b.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if b.Commit == "unknown" {
				b.Commit = s.Value
			}
		case "vcs.time":
			if b.Date == "unknown" {
				b.Date = s.Value
			}
		case "vcs.modified":
			b.Dirty = s.Value == "true"
		}
	}
}

// Info is the one-line form printed by `meshbuilder version`.
func Info() string {
	b := Current()
	commit := short(b.Commit)
	if b.Dirty {
		commit += "-dirty"
	}
	return fmt.Sprintf("meshbuilder %s (commit: %s, built: %s, %s %s)", b.Version, commit, b.Date, b.Go, b.Platform)
}

// UserAgent is sent with outbound provider requests.
func UserAgent() string {
	return "meshbuilder/" + Current().Version
}

func short(s string) string {
	if len(s) > 7 {
		return s[:7]
	}
	return s
}
