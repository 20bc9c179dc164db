package cmd

import "runtime/debug"

// Version is set at build time with -ldflags "-X .../cmd.Version=..."
var Version = ""

func version() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}
