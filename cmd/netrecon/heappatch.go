package main

import (
	"fmt"
	"log/slog"
	"runtime"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/reconforge/netrecon/internal/procmem"
)

// NewHeappatchCmd creates the heappatch command.
func NewHeappatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "heappatch [pid] [search] [replace]",
		Short: "Replace a string in the heap of a running process",
		Long: `Heappatch locates the heap of a running process through /proc, searches
it for a string, and overwrites the string in place. The replacement must
not be longer than the search string; shorter replacements are padded with
NUL bytes.

Root privileges (or ptrace access to the target process) are required.
Linux only.

Examples:
  # Replace a string in the heap of process 4242
  sudo netrecon heappatch 4242 "old value" "new value"`,
		Args: cobra.ExactArgs(3),
		RunE: runHeappatchCmd,
	}
}

// runHeappatchCmd executes the heappatch command.
func runHeappatchCmd(cmd *cobra.Command, args []string) error {
	pid, err := strconv.Atoi(args[0])
	if err != nil || pid <= 0 {
		return fmt.Errorf("invalid pid %q", args[0])
	}
	search, replace := args[1], args[2]

	if runtime.GOOS != "linux" {
		return fmt.Errorf("heappatch requires /proc and is only supported on linux (running on %s)", runtime.GOOS)
	}

	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	patcher := procmem.NewPatcher(procmem.WithPatcherLogger(logger))

	result, err := patcher.Patch(pid, search, replace)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Patched %q -> %q at 0x%x (heap offset 0x%x) in pid %d\n",
		search, replace, result.Address, result.Offset, pid)
	return nil
}
