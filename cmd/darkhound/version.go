package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// These are stamped by -ldflags on release builds. Development builds
// leave them empty and fall back to the metadata the Go toolchain
// embeds in the binary.
var (
	version = ""
	commit  = ""
	date    = ""
)

// buildVersion resolves the release version, falling back to the
// module version recorded in the binary, then to "(devel)".
func buildVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

// vcsSetting reads one key from the binary's embedded VCS metadata.
func vcsSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

// buildCommit resolves the commit hash, abbreviated to 7 characters.
func buildCommit() string {
	c := commit
	if c == "" {
		c = vcsSetting("vcs.revision")
	}
	if c == "" {
		return "unknown"
	}
	if len(c) > 7 {
		return c[:7]
	}
	return c
}

// buildDate resolves the build timestamp.
func buildDate() string {
	if date != "" {
		return date
	}
	if d := vcsSetting("vcs.time"); d != "" {
		return d
	}
	return "unknown"
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version and build metadata",
		Long:  "Show the darkhound version together with the commit and build timestamp it was produced from.",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "darkhound %s (commit %s, built %s)\n",
				buildVersion(), buildCommit(), buildDate())
		},
	}
}
