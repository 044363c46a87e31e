// Package misc holds small helpers shared by commands and configuration.
package misc

import (
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
)

// GetAppName returns base name of the running executable without extension.
func GetAppName() string {
	name, err := os.Executable()
	if err != nil {
		name = os.Args[0]
	}
	name = filepath.Base(name)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// GetVersion returns module version recorded in build info.
func GetVersion() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		return bi.Main.Version
	}
	return "(devel)"
}

// GetGitHash returns VCS revision recorded in build info (short form).
func GetGitHash() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" {
			if len(s.Value) > 12 {
				return s.Value[:12]
			}
			return s.Value
		}
	}
	return "unknown"
}
