package crawler

import (
	"net/url"
	"strings"

	"github.com/reconforge/netrecon/internal/model"
)

// excludedExtensions is the fixed denylist of non-document extensions.
// URLs whose path ends with one of these are never fetched; the crawler
// only follows documents it can extract links from.
var excludedExtensions = []string{".pdf", ".jpg", ".jpeg", ".png", ".gif", ".zip", ".exe"}

// IsCrawlable reports whether a candidate URL falls inside the crawl scope:
// an http or https scheme, the exact authority of the target, and a path
// that does not end in an excluded extension (case-insensitive).
//
// The function is pure: no I/O, no state, same answer for the same input.
func IsCrawlable(rawURL string, target model.CrawlTarget) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	if !target.Contains(u) {
		return false
	}

	path := strings.ToLower(u.Path)
	for _, ext := range excludedExtensions {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}

	return true
}
