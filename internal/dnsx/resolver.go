package dnsx

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"time"
)

// ErrNoIPv4 is returned when a domain resolves but has no IPv4 address.
var ErrNoIPv4 = errors.New("dnsx: no IPv4 address found")

// Resolver answers DNS questions for recon targets. It wraps net.Resolver
// so every lookup honors context cancellation.
type Resolver struct {
	resolver *net.Resolver
	timeout  time.Duration
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverTimeout bounds each lookup.
func WithResolverTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.timeout = d
	}
}

// WithNetResolver replaces the underlying net.Resolver.
func WithNetResolver(nr *net.Resolver) ResolverOption {
	return func(r *Resolver) {
		r.resolver = nr
	}
}

// NewResolver creates a Resolver with a 5 second per-lookup timeout.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		resolver: net.DefaultResolver,
		timeout:  5 * time.Second,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve returns the first IPv4 address of domain.
func (r *Resolver) Resolve(ctx context.Context, domain string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	ips, err := r.resolver.LookupIPAddr(ctx, domain)
	if err != nil {
		return "", fmt.Errorf("dnsx: resolve %s: %w", domain, err)
	}

	for _, ip := range ips {
		if v4 := ip.IP.To4(); v4 != nil {
			return v4.String(), nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNoIPv4, domain)
}

// LookupMX returns the domain's mail exchangers ordered by preference.
func (r *Resolver) LookupMX(ctx context.Context, domain string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	records, err := r.resolver.LookupMX(ctx, domain)
	if err != nil {
		return nil, fmt.Errorf("dnsx: mx lookup %s: %w", domain, err)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Pref < records[j].Pref })

	hosts := make([]string, 0, len(records))
	for _, mx := range records {
		hosts = append(hosts, fmt.Sprintf("%s (priority %d)", mx.Host, mx.Pref))
	}
	return hosts, nil
}
