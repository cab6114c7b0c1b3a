// Package common holds build metadata shared by the command line.
package common

import (
	"fmt"
	"runtime/debug"
)

// Version and GitCommit can be set via ldflags at build time:
//
//	go build -ldflags "-X github.com/bolsillo-claro/cli/internal/common.Version=v1.2.0"
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func GetModuleBuildInfo() (string, string, bool) {
	if Version != "dev" {
		return Version, GitCommit, true
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		version := info.Main.Version
		var gitCommit string

		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				gitCommit = setting.Value
				break
			}
		}

		return version, gitCommit, true
	}
	return "", "", false
}

// GetVersion is the one line version shown by status.
func GetVersion() string {
	version, gitCommit, ok := GetModuleBuildInfo()
	if !ok {
		return "unknown"
	}
	if len(gitCommit) > 8 {
		gitCommit = gitCommit[:8]
	}
	if len(gitCommit) == 0 || gitCommit == "unknown" {
		return version
	}
	return fmt.Sprintf("%s (git: %s)", version, gitCommit)
}
