// Package misc holds build identity helpers shared across the program.
package misc

import (
	"runtime/debug"
)

const appName = "csscull"

// GetAppName returns program name to be used in logs and file names.
func GetAppName() string {
	return appName
}

// GetVersion returns program version recorded in build info.
func GetVersion() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		return bi.Main.Version
	}
	return "(devel)"
}

// GetGitHash returns VCS revision recorded in build info.
func GetGitHash() string {
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
