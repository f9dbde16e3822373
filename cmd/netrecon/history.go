package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reconforge/netrecon/internal/config"
	"github.com/reconforge/netrecon/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [target]",
		Short: "List past scans of a target",
		Long: `History lists the scans stored in the local database for a target,
newest first. Scans are recorded automatically by 'netrecon recon'.

Examples:
  # List every stored scan of a domain
  netrecon history example.com

  # Show only the five most recent scans
  netrecon history --limit 5 example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 0,
		"Maximum number of scans to list (0 lists all)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("no target specified")
	}
	target := args[0]

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	summaries, err := db.History(context.Background(), target, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(summaries) == 0 {
		fmt.Fprintf(out, "No scan history found for %s\n", target)
		fmt.Fprintln(out, "\nUse 'netrecon recon' to scan this target.")
		return nil
	}

	fmt.Fprintf(out, "Scan history for %s (%d scans):\n\n", target, len(summaries))
	fmt.Fprintf(out, "  %-36s  %s\n", "Scan ID", "Date")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 58))
	for _, s := range summaries {
		fmt.Fprintf(out, "  %-36s  %s\n", s.ReportID, s.Timestamp.Format("2006-01-02 15:04:05"))
	}

	return nil
}
