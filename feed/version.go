package feed

import (
	"runtime/debug"

	"github.com/samber/lo"
)

// Version is the release version. A module version stamped by `go install`
// replaces the default at startup.
var (
	Version       = "0.3.0"
	VersionCommit = ""
)

func init() {
	if i, ok := debug.ReadBuildInfo(); ok {
		Version, VersionCommit = buildVersion(i, Version)
	}
}

// buildVersion picks the main module version and vcs revision from i,
// keeping fallback for local "(devel)" builds
func buildVersion(i *debug.BuildInfo, fallback string) (version, commit string) {
	version = fallback
	if v := i.Main.Version; v != "" && v != "(devel)" {
		version = v
	}
	if rev, ok := lo.Find(i.Settings, func(s debug.BuildSetting) bool {
		return s.Key == "vcs.revision"
	}); ok {
		commit = rev.Value
	}
	return version, commit
}
