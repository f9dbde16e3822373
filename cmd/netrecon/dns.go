package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/reconforge/netrecon/internal/dnsx"
)

// NewDNSCmd creates the dns command.
func NewDNSCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dns [domain]",
		Short: "Enumerate DNS records for a domain",
		Long: `DNS enumerates the common record types of a domain: A, AAAA, CNAME,
MX, NS, TXT, and SOA. Record types that do not exist or fail to resolve
are reported but do not abort the enumeration.

Examples:
  # Enumerate all record types
  netrecon dns example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: runDNSCmd,
	}
}

// runDNSCmd executes the dns command.
func runDNSCmd(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("no domain specified")
	}
	domain := args[0]

	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := signalContext(context.Background(), logger)
	defer cancel()

	set := dnsx.NewEnumerator().Enumerate(ctx, domain)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "DNS records for %s\n\n", set.Domain)

	for _, recordType := range dnsx.Types() {
		records := set.Records[recordType]
		if errMsg, failed := set.Errors[recordType]; failed {
			fmt.Fprintf(out, "%-6s no records (%s)\n", recordType, errMsg)
			continue
		}
		fmt.Fprintf(out, "%-6s %d record(s)\n", recordType, len(records))
		for _, record := range records {
			fmt.Fprintf(out, "       %s\n", record)
		}
	}

	fmt.Fprintf(out, "\nTotal: %d records\n", set.Total())
	return nil
}
