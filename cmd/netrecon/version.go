package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set through ldflags on release builds; resolved from the embedded build
// info otherwise.
var (
	version = ""
	commit  = ""
	date    = ""
)

// buildDetails resolves the version metadata shown to the user. Values set
// through ldflags win over what the Go toolchain embedded in the binary.
func buildDetails() (ver, rev, built string) {
	ver, rev, built = version, commit, date

	if info, ok := debug.ReadBuildInfo(); ok {
		if ver == "" {
			ver = info.Main.Version
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if rev == "" {
					rev = s.Value
				}
			case "vcs.time":
				if built == "" {
					built = s.Value
				}
			}
		}
	}

	if ver == "" {
		ver = "dev"
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if rev == "" {
		rev = "none"
	}
	if built == "" {
		built = "unknown"
	}
	return ver, rev, built
}

// getVersion returns the version string used by the root --version flag.
func getVersion() string {
	ver, _, _ := buildDetails()
	return ver
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the netrecon version, the commit it was built from, and the build date.`,
		Run: func(cmd *cobra.Command, _ []string) {
			ver, rev, built := buildDetails()

			if short, _ := cmd.Flags().GetBool("short"); short {
				fmt.Fprintln(cmd.OutOrStdout(), ver)
				return
			}

			fmt.Fprintf(cmd.OutOrStdout(), "netrecon %s\n", ver)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", rev)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", built)
			fmt.Fprintf(cmd.OutOrStdout(), "  go:     %s\n", runtime.Version())
		},
	}

	cmd.Flags().Bool("short", false, "Print only the version number")

	return cmd
}
