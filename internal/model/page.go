package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// CrawledPage records one successfully crawled page.
// A page enters the output only after an HTTP 200 response with an HTML
// content type; the ordered sequence of CrawledPage values is the crawl's
// result. Entries are append-only and never reordered: deduplication happens
// upstream in the visited set, so each URL appears at most once.
type CrawledPage struct {
	// URL is the page URL as it was dispatched to the fetcher.
	URL string `json:"url"`

	// Index is the 1-based position in crawl discovery order.
	Index int `json:"index"`
}

// MaxSnapshotSize caps the stored body snapshot of a fetched page.
// Larger bodies are truncated before storage so that a single oversized
// page cannot dominate report or database size.
const MaxSnapshotSize = 512 * 1024 // 512 KB

// Page holds the response data of a single fetch, used by the crawl
// database and the fetch command. Unlike CrawledPage it is kept for
// unsuccessful fetches too.
type Page struct {
	// URL is the requested URL.
	URL string `json:"url"`

	// FinalURL is the URL after following redirects. Link resolution uses
	// this as the base, not the originally requested URL.
	FinalURL string `json:"final_url,omitempty"`

	// StatusCode is the HTTP response status, or zero if the request
	// failed before a response arrived.
	StatusCode int `json:"status_code"`

	// ContentType is the response's Content-Type header value.
	ContentType string `json:"content_type,omitempty"`

	// Title is the text of the <title> element, empty for non-HTML bodies.
	Title string `json:"title,omitempty"`

	// Headers holds the response headers.
	Headers map[string][]string `json:"headers,omitempty"`

	// Snapshot is the response body, truncated to MaxSnapshotSize.
	Snapshot string `json:"snapshot,omitempty"`

	// Hash is the SHA-256 hex digest of the untruncated body.
	Hash string `json:"hash,omitempty"`
}

// ComputeHash fills Hash from the given raw body bytes.
func (p *Page) ComputeHash(body []byte) {
	sum := sha256.Sum256(body)
	p.Hash = hex.EncodeToString(sum[:])
}

// TruncateSnapshot enforces the MaxSnapshotSize limit on the stored body.
func (p *Page) TruncateSnapshot() {
	if len(p.Snapshot) > MaxSnapshotSize {
		p.Snapshot = p.Snapshot[:MaxSnapshotSize]
	}
}
