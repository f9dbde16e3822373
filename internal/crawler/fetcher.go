package crawler

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// Outcome classifies what a single fetch produced.
type Outcome int

const (
	// OutcomeSuccess: HTTP 200 with an HTML content type; Body is usable.
	OutcomeSuccess Outcome = iota

	// OutcomeNonHTML: HTTP 200 but a non-HTML content type; link
	// extraction is skipped for this page.
	OutcomeNonHTML

	// OutcomeHTTPError: any non-200 status.
	OutcomeHTTPError

	// OutcomeNetworkError: the request never produced a response.
	OutcomeNetworkError
)

// NetworkErrorKind distinguishes network failures for diagnostics.
type NetworkErrorKind int

const (
	// KindNone means the fetch did not fail at the network layer.
	KindNone NetworkErrorKind = iota

	// KindTimeout covers request and connect timeouts.
	KindTimeout

	// KindDNS covers name resolution failures.
	KindDNS

	// KindConnection covers refused and dropped connections.
	KindConnection
)

// String returns the diagnostic label for the error kind.
func (k NetworkErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindDNS:
		return "dns"
	case KindConnection:
		return "connection"
	default:
		return "none"
	}
}

// FetchResult is the classified outcome of fetching one URL.
type FetchResult struct {
	// Outcome is the classification of this fetch.
	Outcome Outcome

	// StatusCode is the HTTP status, zero for network errors.
	StatusCode int

	// ContentType is the response Content-Type header value.
	ContentType string

	// Body is the response body, only populated on OutcomeSuccess.
	Body []byte

	// FinalURL is the URL after following redirects. Link resolution must
	// use this as the base, not the requested URL.
	FinalURL string

	// Headers holds the response headers when a response arrived.
	Headers http.Header

	// ErrorKind distinguishes network failures; KindNone otherwise.
	ErrorKind NetworkErrorKind

	// Err is the underlying error for OutcomeNetworkError.
	Err error
}

// Fetcher issues one HTTP GET per call with a fixed timeout and classifies
// the outcome. Redirects are followed transparently; a stable User-Agent is
// always set so the crawler is never blocked as an anonymous client.
type Fetcher struct {
	// client is the underlying HTTP client. Its Timeout bounds each request.
	client *http.Client

	// userAgent is the stable client identifier string.
	userAgent string

	// maxBodySize caps how much of a response body is read.
	maxBodySize int64

	// cookie is an optional Cookie header for authenticated crawls.
	cookie string

	// headers are optional extra request headers.
	headers map[string]string
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.client.Timeout = d
	}
}

// WithUserAgent sets the client identifier sent on every request.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize caps the response body bytes read per fetch.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithCookie sets a Cookie header for every request.
func WithCookie(cookie string) FetcherOption {
	return func(f *Fetcher) {
		f.cookie = cookie
	}
}

// WithHeaders sets extra request headers sent with every request.
func WithHeaders(headers map[string]string) FetcherOption {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithHTTPClient replaces the underlying HTTP client. Options applied
// before this one that touched the previous client are lost, so pass it
// first when combining.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = client
	}
}

// NewFetcher creates a Fetcher with a 10 second timeout, a 5MB body cap,
// and the netrecon User-Agent.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:      &http.Client{Timeout: 10 * time.Second},
		userAgent:   "Mozilla/5.0 (compatible; netrecon/1.0)",
		maxBodySize: 5 * 1024 * 1024,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch performs one GET and classifies the result. It never returns an
// error: failures are part of the FetchResult so a single bad page cannot
// abort a crawl.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) *FetchResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return &FetchResult{
			Outcome:   OutcomeNetworkError,
			ErrorKind: KindConnection,
			Err:       err,
		}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if f.cookie != "" {
		req.Header.Set("Cookie", f.cookie)
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return &FetchResult{
			Outcome:   OutcomeNetworkError,
			ErrorKind: classifyNetworkError(err),
			Err:       err,
		}
	}
	defer resp.Body.Close()

	result := &FetchResult{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
		Headers:     resp.Header,
	}

	if resp.StatusCode != http.StatusOK {
		result.Outcome = OutcomeHTTPError
		return result
	}

	if !strings.Contains(strings.ToLower(result.ContentType), "text/html") {
		result.Outcome = OutcomeNonHTML
		return result
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		result.Outcome = OutcomeNetworkError
		result.ErrorKind = classifyNetworkError(err)
		result.Err = err
		return result
	}

	result.Outcome = OutcomeSuccess
	result.Body = body
	return result
}

// classifyNetworkError maps a transport error to its diagnostic kind.
// Order matters: DNS errors also satisfy net.Error, so they are checked
// first; timeouts are checked before generic connection failures.
func classifyNetworkError(err error) NetworkErrorKind {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindDNS
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	return KindConnection
}
