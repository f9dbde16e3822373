package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/reconforge/netrecon/internal/config"
	"github.com/reconforge/netrecon/internal/crawler"
	"github.com/reconforge/netrecon/internal/database"
	"github.com/reconforge/netrecon/internal/model"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url]",
		Short: "Crawl a site within its domain scope",
		Long: `Crawl performs a depth-first crawl of a site starting from the seed URL.

Only pages on the exact same host as the seed are followed; subdomains and
external links are never fetched. The crawler pauses between requests and
records every visited page in the local database.

Examples:
  # Crawl example.com two levels deep (the default)
  netrecon crawl example.com

  # Crawl deeper with a shorter politeness delay
  netrecon crawl --depth 4 --delay 500ms https://example.com

  # Use site-specific cookies and headers from a config file
  netrecon crawl -c myconfig.yaml example.com

Configuration file (.netrecon) example:
  sites:
    example.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"
      depth: 3`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCrawlCmd,
	}

	cmd.Flags().IntP("depth", "d", config.DefaultCrawlDepth,
		"Maximum crawl recursion depth")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Politeness delay between requests")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .netrecon in current or home directory)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCrawlConfig(cmd, args)
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

	return runCrawl(ctx, cfg, logger, cmd.OutOrStdout())
}

// buildCrawlConfig creates a Config from cobra command flags.
func buildCrawlConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.CrawlDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	if err := loadSiteConfigs(cfg); err != nil {
		return nil, err
	}

	cfg.SaveToDB = true
	cfg.DBDir = config.XDGDataDir()
	cfg.Targets = args

	return cfg, nil
}

// loadSiteConfigs fills cfg.SiteConfigs from the configuration file.
// A missing file is only an error when the user named the path explicitly.
func loadSiteConfigs(cfg *config.Config) error {
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		siteConfigs, err := config.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.SiteConfigs = siteConfigs
		return nil
	}

	if explicitConfigPath {
		return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	cfg.SiteConfigs = &config.File{
		Sites: make(map[string]config.SiteConfig),
	}
	return nil
}

// runCrawl executes the crawl and prints the visited pages.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	seed := normalizeURL(cfg.Targets[0])

	target, err := model.NewCrawlTarget(seed)
	if err != nil {
		return fmt.Errorf("invalid seed URL %q: %w", cfg.Targets[0], err)
	}

	siteConfig := cfg.SiteConfigs.GetSiteConfig(target.Authority)

	depth := cfg.CrawlDepth
	if siteConfig.Depth > 0 {
		depth = siteConfig.Depth
	}
	delay := cfg.CrawlDelay
	if siteConfig.Delay > 0 {
		delay = siteConfig.Delay
	}

	fetcherOpts := []crawler.FetcherOption{
		crawler.WithTimeout(cfg.Timeout),
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
	}
	if siteConfig.Cookie != "" {
		fetcherOpts = append(fetcherOpts, crawler.WithCookie(siteConfig.Cookie))
	}
	if len(siteConfig.Headers) > 0 {
		fetcherOpts = append(fetcherOpts, crawler.WithHeaders(siteConfig.Headers))
	}

	crawlerOpts := []crawler.Option{
		crawler.WithFetcher(crawler.NewFetcher(fetcherOpts...)),
		crawler.WithMaxDepth(depth),
		crawler.WithDelay(delay),
		crawler.WithLogger(logger),
	}

	var db *database.ReconDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)

		crawlerOpts = append(crawlerOpts, crawler.WithOnVisit(saveCrawledPage(ctx, db, target, logger)))
	}

	logger.Info("starting crawl",
		"seed", seed,
		"depth", depth,
		"delay", delay,
	)

	fmt.Fprintf(out, "Crawling %s (depth %d)...\n", target, depth)
	startTime := time.Now()

	pages, crawlErr := crawler.NewCrawler(target, crawlerOpts...).Crawl(ctx, seed)

	elapsed := time.Since(startTime)
	fmt.Fprintf(out, "\nCrawled %d pages in %s:\n", len(pages), elapsed.Round(time.Millisecond))
	for _, page := range pages {
		fmt.Fprintf(out, "  %3d  %s\n", page.Index, page.URL)
	}

	if errors.Is(crawlErr, context.Canceled) || errors.Is(crawlErr, context.DeadlineExceeded) {
		fmt.Fprintln(out, "\nCrawl interrupted; partial results shown.")
		crawlErr = nil
	}
	if crawlErr != nil {
		return crawlErr
	}

	fmt.Fprintln(out, "\nRemember: Always get permission before crawling websites!")
	return nil
}

// saveCrawledPage returns a visit callback persisting each fetched page.
func saveCrawledPage(ctx context.Context, db *database.ReconDB, target model.CrawlTarget, logger *slog.Logger) crawler.VisitFunc {
	return func(entry model.CrawledPage, page *model.Page) {
		record := &database.CrawlRecord{
			URL:         entry.URL,
			Target:      target.Authority,
			StatusCode:  page.StatusCode,
			ContentType: page.ContentType,
			Title:       page.Title,
			Snapshot:    page.Snapshot,
			RawHash:     page.Hash,
			Headers:     page.Headers,
		}
		if _, err := db.InsertCrawlRecord(ctx, record); err != nil {
			logger.Warn("failed to save crawl record", "url", entry.URL, "error", err)
		}
	}
}
