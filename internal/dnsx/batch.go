package dnsx

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// BatchResult is the outcome of resolving one domain from a list.
type BatchResult struct {
	// Domain is the queried domain.
	Domain string `json:"domain"`

	// IP is the first IPv4 address, empty on failure.
	IP string `json:"ip,omitempty"`

	// Err holds the resolution failure, nil on success.
	Err error `json:"-"`
}

// singleResolver is the one lookup BatchResolver needs. Tests substitute a
// canned implementation.
type singleResolver interface {
	Resolve(ctx context.Context, domain string) (string, error)
}

// BatchResolver resolves a list of domains concurrently, bounded by a
// worker limit, with results in input order.
type BatchResolver struct {
	resolver singleResolver
	limit    int
}

// BatchOption configures a BatchResolver.
type BatchOption func(*BatchResolver)

// WithBatchLimit sets the number of concurrent resolutions.
func WithBatchLimit(limit int) BatchOption {
	return func(b *BatchResolver) {
		if limit > 0 {
			b.limit = limit
		}
	}
}

// WithBatchResolver replaces the underlying resolver.
func WithBatchResolver(r singleResolver) BatchOption {
	return func(b *BatchResolver) {
		b.resolver = r
	}
}

// NewBatchResolver creates a BatchResolver with 10 concurrent workers.
func NewBatchResolver(opts ...BatchOption) *BatchResolver {
	b := &BatchResolver{
		resolver: NewResolver(),
		limit:    10,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// ResolveAll resolves every domain and returns one result per input, in
// input order. Per-domain failures land in their result; the returned error
// is only non-nil when the context is cancelled.
func (b *BatchResolver) ResolveAll(ctx context.Context, domains []string) ([]BatchResult, error) {
	results := make([]BatchResult, len(domains))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.limit)

	for i, domain := range domains {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			ip, err := b.resolver.Resolve(ctx, domain)
			results[i] = BatchResult{Domain: domain, IP: ip, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// LoadDomains reads one domain per line from path. Blank lines and lines
// starting with '#' are skipped.
func LoadDomains(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dnsx: open domain list: %w", err)
	}
	defer f.Close()

	var domains []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		domains = append(domains, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dnsx: read domain list: %w", err)
	}

	return domains, nil
}

// WriteResults writes a formatted resolution report. now stamps the header
// so callers control the clock.
func WriteResults(w io.Writer, results []BatchResult, now time.Time) error {
	resolved := 0
	for _, r := range results {
		if r.Err == nil {
			resolved++
		}
	}

	fmt.Fprintln(w, "DNS Resolution Results")
	fmt.Fprintf(w, "Date: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Resolved: %d/%d\n", resolved, len(results))
	fmt.Fprintln(w, strings.Repeat("-", 40))

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%s -> ERROR: %v\n", r.Domain, r.Err)
			continue
		}
		fmt.Fprintf(w, "%s -> %s\n", r.Domain, r.IP)
	}

	return nil
}

// SaveResults writes the formatted report to path with owner-only access.
func SaveResults(path string, results []BatchResult, now time.Time) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("dnsx: create results file: %w", err)
	}

	if err := WriteResults(f, results, now); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("dnsx: close results file: %w", err)
	}
	return nil
}
