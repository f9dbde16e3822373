package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/reconforge/netrecon/internal/config"
	"github.com/reconforge/netrecon/internal/database"
	"github.com/reconforge/netrecon/internal/dnsx"
	"github.com/reconforge/netrecon/internal/model"
	"github.com/reconforge/netrecon/internal/pipeline"
	"github.com/reconforge/netrecon/internal/protocol"
	"github.com/reconforge/netrecon/internal/report"
	"github.com/reconforge/netrecon/internal/whois"
)

// NewReconCmd creates the recon command.
func NewReconCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recon [domain]",
		Short: "Run the full reconnaissance pipeline against target domains",
		Long: `Recon runs every reconnaissance step against each target domain:

- DNS resolution (IPv4 address and MX records)
- WHOIS registration lookup
- Web service probe (HTTPS with HTTP fallback, headers, link count)
- TCP probe of common service ports

Steps that fail are logged and skipped; the remaining steps still run.
Multiple targets are scanned concurrently. Every report is saved to the
local database for later comparison with 'netrecon history'.

Examples:
  # Full recon of a single domain
  netrecon recon example.com

  # Scan several domains concurrently
  netrecon recon example.com example.org example.net

  # Output JSON report to a file
  netrecon recon --json -o report.json example.com`,
		Args: cobra.ArbitraryArgs,
		RunE: runReconCmd,
	}

	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent scans")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runReconCmd executes the recon command.
func runReconCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildReconConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := signalContext(context.Background(), logger)
	defer cancel()

	return runRecon(ctx, cfg, logger)
}

// buildReconConfig creates a Config from cobra command flags.
func buildReconConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.SaveToDB = true
	cfg.DBDir = config.XDGDataDir()
	cfg.Targets = args

	return cfg, nil
}

// runRecon executes the reconnaissance pipeline.
func runRecon(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting recon",
		"targets", cfg.Targets,
		"batchSize", cfg.BatchSize,
	)

	var db *database.ReconDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	if len(cfg.Targets) > 1 && cfg.BatchSize > 1 {
		return runBatchRecon(ctx, cfg, db, logger)
	}
	return runSequentialRecon(ctx, cfg, db, logger)
}

// runSequentialRecon scans targets one at a time.
func runSequentialRecon(ctx context.Context, cfg *config.Config, db *database.ReconDB, logger *slog.Logger) error {
	for _, target := range cfg.Targets {
		select {
		case <-ctx.Done():
			fmt.Println("Recon interrupted; remaining targets skipped.")
			return nil
		default:
		}

		p := newReconPipeline(cfg, logger)
		scanReport := model.NewReconReport(target)

		fmt.Printf("Scanning %s...\n", target)
		startTime := time.Now()

		if err := p.Execute(ctx, scanReport); err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Warn("scan interrupted", "target", target)
			} else {
				logger.Error("scan failed", "target", target, "error", err)
			}
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Scan completed in %s\n\n", elapsed.Round(time.Millisecond))

		if err := outputReconReport(cfg, scanReport); err != nil {
			logger.Error("report failed", "target", target, "error", err)
		}

		if err := saveReconReport(ctx, db, scanReport, logger); err != nil {
			logger.Error("failed to save scan report", "target", target, "error", err)
		}
	}

	return nil
}

// runBatchRecon scans multiple targets concurrently using BatchProcessor.
func runBatchRecon(ctx context.Context, cfg *config.Config, db *database.ReconDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch recon of %d targets (concurrency: %d)...\n\n",
		len(cfg.Targets), cfg.BatchSize)

	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return newReconPipeline(cfg, logger)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	reports, err := bp.ProcessBatch(ctx, cfg.Targets)

	for i, scanReport := range reports {
		if scanReport == nil {
			continue
		}
		fmt.Printf("[%d/%d] Scan completed: %s\n", i+1, len(cfg.Targets), scanReport.Target)

		if err := outputReconReport(cfg, scanReport); err != nil {
			logger.Error("report failed", "target", scanReport.Target, "error", err)
		}
		if err := saveReconReport(ctx, db, scanReport, logger); err != nil {
			logger.Error("failed to save scan report", "target", scanReport.Target, "error", err)
		}
	}

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch recon completed in %s\n", elapsed.Round(time.Millisecond))

	if errors.Is(err, context.Canceled) {
		fmt.Println("Batch recon interrupted; partial results shown.")
		return nil
	}
	return err
}

// newReconPipeline assembles the full step pipeline for one target.
func newReconPipeline(cfg *config.Config, logger *slog.Logger) *pipeline.Pipeline {
	p := pipeline.New(
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	)

	p.AddSteps(
		pipeline.NewDNSStep(dnsx.NewResolver(dnsx.WithResolverTimeout(cfg.Timeout))),
		pipeline.NewWhoisStep(whois.NewClient(whois.WithTimeout(cfg.Timeout))),
		pipeline.NewWebStep(protocol.NewWebProber(
			protocol.WithWebUserAgent(cfg.UserAgent),
			protocol.WithWebMaxBodySize(cfg.MaxBodySize),
		)),
		pipeline.NewPortScanStep(
			protocol.NewPortScanner(protocol.WithPortTimeout(cfg.PortTimeout)),
			config.CommonPorts,
		),
	)

	return p
}

// outputReconReport outputs the scan report in the requested format.
func outputReconReport(cfg *config.Config, scanReport *model.ReconReport) error {
	var output io.Writer = os.Stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports may contain sensitive information; owner-only access.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewTextWriter(output)
	}

	_, err := writer.Write(scanReport)
	return err
}

// saveReconReport saves the scan report to the database if enabled.
// If db is nil, this function is a no-op.
func saveReconReport(ctx context.Context, db *database.ReconDB, scanReport *model.ReconReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	if err := db.SaveReport(ctx, scanReport); err != nil {
		return fmt.Errorf("failed to save scan report: %w", err)
	}

	logger.Info("scan report saved to database", "target", scanReport.Target, "id", scanReport.ID)
	return nil
}
