package crawler

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/reconforge/netrecon/internal/model"
)

// LinkExtractor parses an HTML document and produces the in-scope,
// crawlable absolute URLs reachable from it.
//
// We use golang.org/x/net/html rather than regular expressions because it
// tolerates the malformed markup common on the web and gives a proper node
// tree to walk.
type LinkExtractor struct {
	// base is the URL relative references resolve against. This must be
	// the final URL after redirects, not the originally requested one.
	base *url.URL

	// target is the crawl's domain scope.
	target model.CrawlTarget
}

// ExtractResult holds what one parse pass produced.
type ExtractResult struct {
	// Title is the text of the document's <title> element.
	Title string

	// Links are the absolute, in-scope, deduplicated URLs in the order
	// they first appear in the document. Fragments are stripped.
	Links []string
}

// NewLinkExtractor creates an extractor resolving against baseURL and
// filtering against target.
func NewLinkExtractor(baseURL string, target model.CrawlTarget) (*LinkExtractor, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &LinkExtractor{base: base, target: target}, nil
}

// Extract parses the document and collects crawlable links.
// On a parse failure it returns a nil result and the error; the caller
// treats that as zero links and keeps crawling.
func (e *LinkExtractor) Extract(content io.Reader) (*ExtractResult, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	result := &ExtractResult{Links: make([]string, 0)}
	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if result.Title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					result.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "a":
				if href := getAttr(n, "href"); href != "" {
					if resolved := e.resolve(href); resolved != "" && !seen[resolved] {
						seen[resolved] = true
						result.Links = append(result.Links, resolved)
					}
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)

	return result, nil
}

// resolve turns one href value into an absolute in-scope URL, or returns
// an empty string if the reference should be skipped.
func (e *LinkExtractor) resolve(href string) string {
	href = strings.TrimSpace(href)
	if href == "" ||
		strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := e.base.ResolveReference(u)
	resolved.Fragment = ""

	absolute := resolved.String()
	if !IsCrawlable(absolute, e.target) {
		return ""
	}

	return absolute
}

// CountHyperlinks returns the number of <a> elements carrying a non-empty
// href in the document, with no scope filtering. Used by the web recon
// step for its link tally. Returns zero on a parse failure.
func CountHyperlinks(content io.Reader) int {
	doc, err := html.Parse(content)
	if err != nil {
		return 0
	}

	count := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" && getAttr(n, "href") != "" {
			count++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return count
}

// DocumentTitle returns the text of the first <title> element, or an empty
// string when the document has none or fails to parse.
func DocumentTitle(content io.Reader) string {
	doc, err := html.Parse(content)
	if err != nil {
		return ""
	}

	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" &&
			n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			title = strings.TrimSpace(n.FirstChild.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return title
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
