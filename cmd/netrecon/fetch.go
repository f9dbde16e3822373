package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"github.com/reconforge/netrecon/internal/config"
	"github.com/reconforge/netrecon/internal/crawler"
)

// NewFetchCmd creates the fetch command.
func NewFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch [url]",
		Short: "Download a page and print its normalized HTML",
		Long: `Fetch downloads a single page, parses the HTML, and re-renders the
document in normalized form. Non-HTML responses are reported but not
rendered.

Bare domains are fetched over HTTPS.

Examples:
  # Print the normalized HTML of a page
  netrecon fetch example.com

  # Save the page to a file
  netrecon fetch -o page.html https://example.com/about`,
		Args: cobra.MaximumNArgs(1),
		RunE: runFetchCmd,
	}

	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for the request")
	cmd.Flags().StringP("output", "o", "",
		"Write the page to specified file path instead of stdout")

	return cmd
}

// runFetchCmd executes the fetch command.
func runFetchCmd(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("no URL specified")
	}
	pageURL := normalizeURL(args[0])

	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := signalContext(context.Background(), logger)
	defer cancel()

	fetcher := crawler.NewFetcher(
		crawler.WithTimeout(timeout),
		crawler.WithUserAgent(config.DefaultUserAgent),
		crawler.WithMaxBodySize(config.DefaultMaxBodySize),
	)

	result := fetcher.Fetch(ctx, pageURL)
	switch result.Outcome {
	case crawler.OutcomeNetworkError:
		return fmt.Errorf("failed to fetch %s: %w", pageURL, result.Err)
	case crawler.OutcomeHTTPError:
		return fmt.Errorf("failed to fetch %s: HTTP %d", pageURL, result.StatusCode)
	case crawler.OutcomeNonHTML:
		fmt.Fprintf(cmd.ErrOrStderr(), "Fetched %s (status %d, %s); not HTML, nothing to render\n",
			result.FinalURL, result.StatusCode, result.ContentType)
		return nil
	}

	doc, err := html.Parse(bytes.NewReader(result.Body))
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}

	var rendered bytes.Buffer
	if err := html.Render(&rendered, doc); err != nil {
		return fmt.Errorf("failed to render HTML: %w", err)
	}
	rendered.WriteByte('\n')

	fmt.Fprintf(cmd.ErrOrStderr(), "Fetched %s (status %d, %d bytes)\n",
		result.FinalURL, result.StatusCode, len(result.Body))

	if outputPath != "" {
		if err := os.WriteFile(outputPath, rendered.Bytes(), 0600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved to %s\n", outputPath)
		return nil
	}

	_, err = cmd.OutOrStdout().Write(rendered.Bytes())
	return err
}
