package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. These mirror the behavior of classic
// single-shot recon scripts: short clearnet timeouts, a shallow default
// crawl, and a conservative politeness delay.
const (
	// DefaultTimeout is the per-request timeout for HTTP fetches.
	// Clearnet targets answer quickly; anything slower than 10 seconds is
	// treated as unreachable.
	DefaultTimeout = 10 * time.Second

	// DefaultCrawlDepth is the maximum link distance from the seed URL.
	// Depth 0 fetches only the seed page; depth 2 is enough to map the
	// navigable structure of most small sites without runaway growth.
	DefaultCrawlDepth = 2

	// DefaultCrawlDelay is the pause between successive crawl requests.
	// One second keeps the outbound request rate polite toward the target.
	DefaultCrawlDelay = 1 * time.Second

	// DefaultPortTimeout is the TCP connect timeout for port probes.
	// Two seconds distinguishes filtered ports from slow accepts without
	// stretching a common-port sweep past half a minute.
	DefaultPortTimeout = 2 * time.Second

	// DefaultBatchSize is the number of concurrent runs when processing
	// multiple targets or resolving domain lists.
	DefaultBatchSize = 10

	// DefaultUserAgent identifies netrecon in HTTP requests. A stable,
	// descriptive identifier avoids anonymous-agent blocking and lets
	// operators attribute scanner traffic in their logs.
	DefaultUserAgent = "Mozilla/5.0 (compatible; netrecon/1.0)"

	// DefaultMaxBodySize caps response bodies read into memory.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// AppName is used for XDG directory paths.
	AppName = "netrecon"
)

// CommonPorts is the fixed port list probed by the composite recon run.
// It covers the classic remote-access, mail, DNS, and web services.
var CommonPorts = []int{21, 22, 23, 25, 53, 80, 110, 143, 443, 993, 995}

// Config holds all options for a netrecon invocation. It is populated from
// CLI flags plus the optional .netrecon file and passed down by dependency
// injection; there is no global state.
type Config struct {
	// Timeout is the per-request timeout for HTTP fetches.
	Timeout time.Duration

	// CrawlDepth is the maximum crawl recursion depth. Must be >= 0.
	CrawlDepth int

	// CrawlDelay is the politeness pause between crawl requests. Must be >= 0.
	CrawlDelay time.Duration

	// PortTimeout is the TCP connect timeout for port probes.
	PortTimeout time.Duration

	// BatchSize is the number of concurrent scans for multi-target runs.
	BatchSize int

	// UserAgent is the HTTP client identifier sent with every request.
	UserAgent string

	// MaxBodySize caps response bodies read into memory.
	MaxBodySize int64

	// ConfigFilePath is an explicit .netrecon path. Empty means search the
	// working directory and then the home directory.
	ConfigFilePath string

	// SiteConfigs holds per-site overrides loaded from the config file.
	SiteConfigs *File

	// JSONReport selects JSON report output. Mutually exclusive with
	// MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown report output.
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// SaveToDB persists scan reports to the SQLite database.
	SaveToDB bool

	// DBDir is the directory holding the SQLite database file.
	DBDir string

	// Targets is the list of domains or URLs to operate on.
	Targets []string
}

// NewConfig returns a Config with every default filled in.
func NewConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		CrawlDepth:  DefaultCrawlDepth,
		CrawlDelay:  DefaultCrawlDelay,
		PortTimeout: DefaultPortTimeout,
		BatchSize:   DefaultBatchSize,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
	}
}

// XDGDataDir returns the per-user data directory for netrecon
// (~/.local/share/netrecon on Linux).
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the per-user config directory for netrecon.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// It is called once after flag parsing, before any network activity.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.CrawlDepth < 0 {
		return ErrInvalidDepth
	}
	if c.CrawlDelay < 0 {
		return ErrInvalidDelay
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}
