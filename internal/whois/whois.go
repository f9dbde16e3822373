// Package whois performs WHOIS lookups for recon targets and condenses the
// registry answer into the fields a scan report cares about.
package whois

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	likewhois "github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"

	"github.com/reconforge/netrecon/internal/model"
)

// ErrEmptyDomain is returned when the lookup target is blank.
var ErrEmptyDomain = errors.New("whois: empty domain")

// lookupFunc fetches the raw WHOIS text. Swappable so tests never talk to
// registry servers.
type lookupFunc func(ctx context.Context, domain string) (string, error)

// Client performs WHOIS lookups.
type Client struct {
	lookup  lookupFunc
	timeout time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLookup replaces the raw WHOIS fetch.
func WithLookup(fn lookupFunc) ClientOption {
	return func(c *Client) {
		c.lookup = fn
	}
}

// WithTimeout bounds each lookup.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// NewClient creates a Client with a 10 second timeout.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		timeout: 10 * time.Second,
	}
	c.lookup = c.rawLookup

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// rawLookup queries the registry chain for domain.
func (c *Client) rawLookup(ctx context.Context, domain string) (string, error) {
	client := likewhois.NewClient()
	client.SetTimeout(c.timeout)

	raw, err := client.Whois(domain)
	if err != nil {
		return "", fmt.Errorf("whois: lookup %s: %w", domain, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return raw, nil
}

// Lookup fetches and parses the WHOIS record for domain. When the answer
// cannot be parsed (some TLDs use free-form formats) the summary still
// carries the raw text so nothing is lost.
func (c *Client) Lookup(ctx context.Context, domain string) (*model.WhoisSummary, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return nil, ErrEmptyDomain
	}

	raw, err := c.lookup(ctx, domain)
	if err != nil {
		return nil, err
	}

	summary := &model.WhoisSummary{Raw: raw}

	parsed, err := whoisparser.Parse(raw)
	if err != nil {
		// Unparseable output is not a failed lookup.
		return summary, nil
	}

	if parsed.Registrar != nil {
		summary.Registrar = parsed.Registrar.Name
	}
	if parsed.Domain != nil {
		summary.CreatedDate = parsed.Domain.CreatedDate
		summary.ExpirationDate = parsed.Domain.ExpirationDate
		summary.NameServers = append(summary.NameServers, parsed.Domain.NameServers...)
	}

	return summary, nil
}
