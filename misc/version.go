// Package misc has code which does not fit anywhere else.
package misc

import (
	"runtime/debug"
)

const appName = "pdg"

// Set by the linker during official builds.
var (
	version = ""
	gitHash = ""
)

// GetAppName returns base name of the program.
func GetAppName() string {
	return appName
}

// GetVersion returns program version, falling back to module build info when
// the linker did not stamp one.
func GetVersion() string {
	if len(version) > 0 {
		return version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && len(bi.Main.Version) > 0 {
		return bi.Main.Version
	}
	return "(devel)"
}

// GetGitHash returns VCS revision the program was built from.
func GetGitHash() string {
	if len(gitHash) > 0 {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
