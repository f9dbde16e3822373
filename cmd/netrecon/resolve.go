package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/reconforge/netrecon/internal/config"
	"github.com/reconforge/netrecon/internal/dnsx"
)

// NewResolveCmd creates the resolve command.
func NewResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [domain]",
		Short: "Resolve domain names to IPv4 addresses",
		Long: `Resolve looks up the IPv4 address of a domain.

With --list, every domain in the given file is resolved concurrently.
The file holds one domain per line; blank lines and lines starting with
'#' are skipped. Use --output to write the results to a file.

Examples:
  # Resolve a single domain
  netrecon resolve example.com

  # Resolve every domain in a file
  netrecon resolve --list domains.txt

  # Resolve a list and save the results
  netrecon resolve --list domains.txt --output results.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: runResolveCmd,
	}

	cmd.Flags().StringP("list", "l", "",
		"File with one domain per line to resolve in batch")
	cmd.Flags().StringP("output", "o", "",
		"Write batch results to specified file path")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent resolutions in batch mode")

	return cmd
}

// runResolveCmd executes the resolve command.
func runResolveCmd(cmd *cobra.Command, args []string) error {
	listPath, err := cmd.Flags().GetString("list")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	batchSize, err := cmd.Flags().GetInt("batch")
	if err != nil {
		return err
	}

	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := signalContext(context.Background(), logger)
	defer cancel()

	if listPath != "" {
		return runBatchResolve(ctx, listPath, outputPath, batchSize)
	}

	if len(args) == 0 {
		return errors.New("no domain specified (pass a domain or use --list)")
	}
	return runSingleResolve(ctx, args[0], cmd)
}

// runSingleResolve resolves one domain and prints the result.
func runSingleResolve(ctx context.Context, domain string, cmd *cobra.Command) error {
	resolver := dnsx.NewResolver()

	ip, err := resolver.Resolve(ctx, domain)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", domain, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", domain, ip)
	return nil
}

// runBatchResolve resolves every domain in the list file.
func runBatchResolve(ctx context.Context, listPath, outputPath string, batchSize int) error {
	domains, err := dnsx.LoadDomains(listPath)
	if err != nil {
		return fmt.Errorf("failed to load domain list: %w", err)
	}
	if len(domains) == 0 {
		return fmt.Errorf("no domains found in %s", listPath)
	}

	resolver := dnsx.NewBatchResolver(dnsx.WithBatchLimit(batchSize))

	results, err := resolver.ResolveAll(ctx, domains)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("batch resolution failed: %w", err)
	}

	if outputPath != "" {
		if err := dnsx.SaveResults(outputPath, results, time.Now()); err != nil {
			return err
		}
		fmt.Printf("Saved %d results to %s\n", len(results), outputPath)
		return nil
	}

	return dnsx.WriteResults(os.Stdout, results, time.Now())
}
