package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"github.com/spf13/cobra"

	"github.com/reconforge/netrecon/internal/config"
	"github.com/reconforge/netrecon/internal/protocol"
)

// NewHeadersCmd creates the headers command.
func NewHeadersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "headers [url]",
		Short: "Fetch and analyze HTTP response headers",
		Long: `Headers fetches the response headers of a URL and analyzes them for
security problems: missing security headers, server software disclosure,
and insecure cookie attributes.

Bare domains are fetched over HTTPS.

Examples:
  # Analyze headers of a site
  netrecon headers example.com

  # Analyze an explicit URL
  netrecon headers http://example.com/login`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHeadersCmd,
	}

	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for the request")

	return cmd
}

// runHeadersCmd executes the headers command.
func runHeadersCmd(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("no URL specified")
	}
	pageURL := normalizeURL(args[0])

	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}

	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := signalContext(context.Background(), logger)
	defer cancel()

	scanner := protocol.NewHeaderScanner(
		protocol.WithHeaderClient(&http.Client{Timeout: timeout}),
	)

	result, err := scanner.Scan(ctx, pageURL)
	if err != nil {
		return fmt.Errorf("failed to fetch headers: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Headers for %s (status %d)\n\n", result.URL, result.StatusCode)

	names := make([]string, 0, len(result.Headers))
	for name := range result.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, value := range result.Headers[name] {
			fmt.Fprintf(out, "  %s: %s\n", name, value)
		}
	}

	if len(result.Findings) == 0 {
		fmt.Fprintln(out, "\nNo header findings.")
		return nil
	}

	fmt.Fprintf(out, "\nFindings (%d):\n", len(result.Findings))
	for _, f := range result.Findings {
		fmt.Fprintf(out, "  [%s] %s", f.SeverityText, f.Title)
		if f.Value != "" {
			fmt.Fprintf(out, " (%s)", f.Value)
		}
		fmt.Fprintln(out)
	}

	return nil
}
