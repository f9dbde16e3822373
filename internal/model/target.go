package model

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidSeedURL is returned when a seed URL cannot be parsed or has no host.
var ErrInvalidSeedURL = errors.New("invalid seed URL")

// CrawlTarget is the immutable domain scope of a crawl.
// It is derived once from the seed URL and never mutated; every discovered
// link is checked against it before being fetched.
//
// Authority comparison is an exact host[:port] string match after
// normalization. Subdomains are deliberately out of scope: a crawl of
// example.com never follows links to www.example.com.
type CrawlTarget struct {
	// Scheme is the seed URL's scheme, either "http" or "https".
	Scheme string

	// Authority is the normalized host[:port] of the seed URL.
	Authority string
}

// NewCrawlTarget derives the crawl scope from a seed URL.
// The seed must be an absolute http or https URL with a non-empty host.
func NewCrawlTarget(seedURL string) (CrawlTarget, error) {
	u, err := url.Parse(seedURL)
	if err != nil {
		return CrawlTarget{}, fmt.Errorf("%w: %v", ErrInvalidSeedURL, err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return CrawlTarget{}, fmt.Errorf("%w: scheme %q is not http or https", ErrInvalidSeedURL, u.Scheme)
	}
	if u.Host == "" {
		return CrawlTarget{}, fmt.Errorf("%w: missing host in %q", ErrInvalidSeedURL, seedURL)
	}

	return CrawlTarget{
		Scheme:    scheme,
		Authority: strings.ToLower(u.Host),
	}, nil
}

// Contains reports whether the given parsed URL falls inside the crawl scope:
// same authority, and an http or https scheme.
func (t CrawlTarget) Contains(u *url.URL) bool {
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false
	}
	return strings.EqualFold(u.Host, t.Authority)
}

// String returns the scope as "scheme://authority".
func (t CrawlTarget) String() string {
	return t.Scheme + "://" + t.Authority
}
