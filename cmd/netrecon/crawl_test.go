package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reconforge/netrecon/internal/config"
	"github.com/reconforge/netrecon/internal/database"
)

// TestNewCrawlCmd tests the crawl command creation.
func TestNewCrawlCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "crawl [url]" {
			t.Errorf("expected use 'crawl [url]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has depth flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("depth")
		if flag == nil {
			t.Fatal("expected depth flag")
		}
		if flag.Shorthand != "d" {
			t.Errorf("expected shorthand 'd', got %q", flag.Shorthand)
		}
		if flag.DefValue != "2" {
			t.Errorf("expected default '2', got %q", flag.DefValue)
		}
	})

	t.Run("has delay flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("delay") == nil {
			t.Error("expected delay flag")
		}
	})

	t.Run("has timeout flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("timeout")
		if flag == nil {
			t.Fatal("expected timeout flag")
		}
		if flag.Shorthand != "t" {
			t.Errorf("expected shorthand 't', got %q", flag.Shorthand)
		}
	})

	t.Run("has config flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("config")
		if flag == nil {
			t.Fatal("expected config flag")
		}
		if flag.Shorthand != "c" {
			t.Errorf("expected shorthand 'c', got %q", flag.Shorthand)
		}
	})
}

// TestBuildCrawlConfig tests configuration building from flags.
func TestBuildCrawlConfig(t *testing.T) {
	t.Run("builds config with default values", func(t *testing.T) {
		cmd := NewCrawlCmd()
		cfg, err := buildCrawlConfig(cmd, []string{"example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.Targets) != 1 || cfg.Targets[0] != "example.com" {
			t.Errorf("expected targets [example.com], got %v", cfg.Targets)
		}
		if cfg.CrawlDepth != config.DefaultCrawlDepth {
			t.Errorf("expected default depth, got %d", cfg.CrawlDepth)
		}
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true")
		}
	})

	t.Run("builds config with custom depth", func(t *testing.T) {
		cmd := NewCrawlCmd()
		_ = cmd.Flags().Set("depth", "5")
		cfg, err := buildCrawlConfig(cmd, []string{"example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.CrawlDepth != 5 {
			t.Errorf("expected depth 5, got %d", cfg.CrawlDepth)
		}
	})

	t.Run("loads valid config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, ".netrecon")
		content := []byte(`
defaults:
  depth: 3
sites:
  example.com:
    cookie: session=xyz
`)
		if err := os.WriteFile(configPath, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewCrawlCmd()
		_ = cmd.Flags().Set("config", configPath)
		cfg, err := buildCrawlConfig(cmd, []string{"example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.SiteConfigs == nil {
			t.Fatal("expected SiteConfigs to be loaded")
		}
		if cfg.SiteConfigs.Defaults.Depth != 3 {
			t.Errorf("expected default depth 3, got %d", cfg.SiteConfigs.Defaults.Depth)
		}
		if cfg.SiteConfigs.Sites["example.com"].Cookie != "session=xyz" {
			t.Error("expected site cookie to be loaded")
		}
	})

	t.Run("returns error for missing explicit config file", func(t *testing.T) {
		cmd := NewCrawlCmd()
		_ = cmd.Flags().Set("config", filepath.Join(t.TempDir(), "missing.yaml"))
		if _, err := buildCrawlConfig(cmd, []string{"example.com"}); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("returns error for invalid config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "invalid.yaml")
		if err := os.WriteFile(configPath, []byte("{invalid yaml"), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewCrawlCmd()
		_ = cmd.Flags().Set("config", configPath)
		if _, err := buildCrawlConfig(cmd, []string{"example.com"}); err == nil {
			t.Error("expected error for invalid config file")
		}
	})
}

// TestRunCrawl tests the crawl flow against a local test server.
func TestRunCrawl(t *testing.T) {
	t.Parallel()

	newTestConfig := func(t *testing.T, seed string) *config.Config {
		t.Helper()
		cfg := config.NewConfig()
		cfg.Targets = []string{seed}
		cfg.CrawlDelay = 0
		cfg.SaveToDB = true
		cfg.DBDir = t.TempDir()
		cfg.SiteConfigs = &config.File{Sites: make(map[string]config.SiteConfig)}
		return cfg
	}

	t.Run("crawls linked pages and saves them", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, `<html><head><title>Home</title></head><body><a href="/about">About</a></body></html>`)
		})
		mux.HandleFunc("/about", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, `<html><head><title>About</title></head><body></body></html>`)
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		cfg := newTestConfig(t, server.URL)
		logger := setupLogger(false)

		var out bytes.Buffer
		if err := runCrawl(context.Background(), cfg, logger, &out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := out.String()
		if !strings.Contains(output, "Crawled 2 pages") {
			t.Errorf("expected 2 crawled pages, got output:\n%s", output)
		}
		if !strings.Contains(output, server.URL+"/about") {
			t.Errorf("expected /about in output:\n%s", output)
		}
		if !strings.Contains(output, "get permission before crawling") {
			t.Errorf("expected permission reminder in output:\n%s", output)
		}

		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db.Close()

		target := strings.TrimPrefix(server.URL, "http://")
		record, err := db.GetCrawlRecord(context.Background(), server.URL+"/about", target)
		if err != nil {
			t.Fatalf("failed to get crawl record: %v", err)
		}
		if record == nil {
			t.Fatal("expected crawl record for /about")
		}
		if record.Title != "About" {
			t.Errorf("expected title About, got %q", record.Title)
		}
	})

	t.Run("rejects invalid seed URL", func(t *testing.T) {
		t.Parallel()

		cfg := newTestConfig(t, "://not a url")
		var out bytes.Buffer
		if err := runCrawl(context.Background(), cfg, setupLogger(false), &out); err == nil {
			t.Error("expected error for invalid seed URL")
		}
	})

	t.Run("cancelled crawl reports partial results without error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, `<html><body></body></html>`)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		cfg := newTestConfig(t, server.URL)
		var out bytes.Buffer
		if err := runCrawl(ctx, cfg, setupLogger(false), &out); err != nil {
			t.Fatalf("expected nil error for cancelled crawl, got %v", err)
		}
		if !strings.Contains(out.String(), "interrupted") {
			t.Errorf("expected interruption notice, got:\n%s", out.String())
		}
	})
}
