package version

import (
	"fmt"
	"io"
	"runtime/debug"
)

// Module is the import path reported by csv2saf version.
const Module = "github.com/dendrascience/csv2saf"

// Release builds stamp these through -ldflags "-X".
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

const unknown = "unknown"

// Info is the version record printed by the version command and logged at mount.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Package string `json:"package"`
}

// readBuildInfo is swapped out by tests.
var readBuildInfo = debug.ReadBuildInfo

// stamped returns value unless it is empty or still the unstamped placeholder.
func stamped(value, placeholder string) (string, bool) {
	if value == "" || value == placeholder {
		return "", false
	}
	return value, true
}

// buildSetting looks up a vcs.* key recorded by go build.
func buildSetting(key string) string {
	info, ok := readBuildInfo()
	if !ok {
		return unknown
	}
	for _, s := range info.Settings {
		if s.Key == key && s.Value != "" {
			return s.Value
		}
	}
	return unknown
}

// GetVersion returns the stamped release, then the module version from go
// install, then "development".
func GetVersion() string {
	if v, ok := stamped(Version, "dev"); ok {
		return v
	}
	if info, ok := readBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "development"
}

func GetCommit() string {
	if c, ok := stamped(Commit, unknown); ok {
		return c
	}
	return buildSetting("vcs.revision")
}

func GetBuildDate() string {
	if d, ok := stamped(Date, unknown); ok {
		return d
	}
	return buildSetting("vcs.time")
}

func GetInfo() Info {
	return Info{
		Version: GetVersion(),
		Commit:  GetCommit(),
		Date:    GetBuildDate(),
		Package: Module,
	}
}

// GetFullVersion renders the version with a seven character commit and the
// build date when both are known, e.g. "v1.0.0 (0123456, built 2026-01-02)".
func GetFullVersion() string {
	info := GetInfo()
	if info.Commit == unknown || len(info.Commit) <= 7 {
		return info.Version
	}
	short := info.Commit[:7]
	if info.Date == unknown {
		return fmt.Sprintf("%s (%s)", info.Version, short)
	}
	return fmt.Sprintf("%s (%s, built %s)", info.Version, short, info.Date)
}

// PrintVersion writes the output of csv2saf version to w.
func PrintVersion(w io.Writer, appName string) {
	info := GetInfo()
	fmt.Fprintf(w, "%s version %s\n", appName, GetFullVersion())
	fmt.Fprintf(w, "Package: %s\nCommit: %s\nBuild Date: %s\n", info.Package, info.Commit, info.Date)
}
