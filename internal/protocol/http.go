package protocol

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/reconforge/netrecon/internal/crawler"
	"github.com/reconforge/netrecon/internal/model"
)

// securityHeader describes one HTTP response header whose absence weakens
// the target's security posture.
type securityHeader struct {
	name        string
	severity    model.Severity
	description string
}

// securityHeaders is checked in order; order is stable for reports.
var securityHeaders = []securityHeader{
	{
		name:        "Strict-Transport-Security",
		severity:    model.SeverityMedium,
		description: "Without HSTS, clients can be downgraded to plain HTTP.",
	},
	{
		name:        "Content-Security-Policy",
		severity:    model.SeverityMedium,
		description: "Without a CSP, injected scripts execute unrestricted.",
	},
	{
		name:        "X-Frame-Options",
		severity:    model.SeverityMedium,
		description: "Without framing restrictions, the site can be embedded for clickjacking.",
	},
	{
		name:        "X-Content-Type-Options",
		severity:    model.SeverityLow,
		description: "Without nosniff, browsers may MIME-sniff responses into executable types.",
	},
	{
		name:        "Referrer-Policy",
		severity:    model.SeverityLow,
		description: "Without a referrer policy, full URLs leak to linked sites.",
	},
}

// HeaderResult holds one header scan.
type HeaderResult struct {
	// URL is the scanned URL after redirects.
	URL string

	// StatusCode is the HTTP response status.
	StatusCode int

	// Headers are the response headers.
	Headers http.Header

	// Findings are the security observations derived from the headers.
	Findings []model.Finding
}

// HeaderScanner fetches and analyzes HTTP response headers.
type HeaderScanner struct {
	client    *http.Client
	userAgent string
}

// HeaderScannerOption configures a HeaderScanner.
type HeaderScannerOption func(*HeaderScanner)

// WithHeaderClient replaces the HTTP client.
func WithHeaderClient(client *http.Client) HeaderScannerOption {
	return func(s *HeaderScanner) {
		s.client = client
	}
}

// WithHeaderUserAgent sets the client identifier.
func WithHeaderUserAgent(ua string) HeaderScannerOption {
	return func(s *HeaderScanner) {
		s.userAgent = ua
	}
}

// NewHeaderScanner creates a HeaderScanner with a 10 second timeout.
func NewHeaderScanner(opts ...HeaderScannerOption) *HeaderScanner {
	s := &HeaderScanner{
		client:    &http.Client{Timeout: 10 * time.Second},
		userAgent: "Mozilla/5.0 (compatible; netrecon/1.0)",
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Scan fetches pageURL and analyzes its response headers.
func (s *HeaderScanner) Scan(ctx context.Context, pageURL string) (*HeaderResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("protocol: build header request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("protocol: fetch headers: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck

	return &HeaderResult{
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Findings:   AnalyzeHeaders(resp.Header),
	}, nil
}

// AnalyzeHeaders derives security findings from response headers: missing
// protection headers, software disclosure, and cookie attributes.
func AnalyzeHeaders(headers http.Header) []model.Finding {
	findings := make([]model.Finding, 0)

	for _, sh := range securityHeaders {
		if headers.Get(sh.name) != "" {
			continue
		}
		f := model.NewFinding("missing-security-header", "Missing "+sh.name, sh.severity)
		f.Description = sh.description
		f.Value = sh.name
		f.Location = "response headers"
		findings = append(findings, f)
	}

	if server := headers.Get("Server"); server != "" && strings.ContainsAny(server, "0123456789") {
		f := model.NewFinding("software-disclosure", "Server version disclosed", model.SeverityLow)
		f.Description = "The Server header reveals software and version information."
		f.Value = server
		f.Location = "Server header"
		findings = append(findings, f)
	}

	if powered := headers.Get("X-Powered-By"); powered != "" {
		f := model.NewFinding("software-disclosure", "X-Powered-By disclosed", model.SeverityLow)
		f.Description = "The X-Powered-By header reveals the application platform."
		f.Value = powered
		f.Location = "X-Powered-By header"
		findings = append(findings, f)
	}

	for _, cookie := range headers.Values("Set-Cookie") {
		lower := strings.ToLower(cookie)
		name, _, _ := strings.Cut(cookie, "=")

		if !strings.Contains(lower, "httponly") {
			f := model.NewFinding("insecure-cookie", "Cookie without HttpOnly", model.SeverityMedium)
			f.Description = "Scripts can read this cookie, exposing it to XSS theft."
			f.Value = name
			f.Location = "Set-Cookie header"
			findings = append(findings, f)
		}
		if !strings.Contains(lower, "secure") {
			f := model.NewFinding("insecure-cookie", "Cookie without Secure", model.SeverityMedium)
			f.Description = "This cookie is also sent over plain HTTP connections."
			f.Value = name
			f.Location = "Set-Cookie header"
			findings = append(findings, f)
		}
	}

	return findings
}

// importantHeaders are the response headers a composite recon report keeps.
var importantHeaders = []string{
	"Server",
	"Content-Type",
	"X-Powered-By",
	"Strict-Transport-Security",
}

// WebProber checks whether a target serves a web site, preferring HTTPS and
// falling back to plain HTTP.
type WebProber struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
}

// WebProberOption configures a WebProber.
type WebProberOption func(*WebProber)

// WithWebClient replaces the HTTP client.
func WithWebClient(client *http.Client) WebProberOption {
	return func(p *WebProber) {
		p.client = client
	}
}

// WithWebUserAgent sets the client identifier.
func WithWebUserAgent(ua string) WebProberOption {
	return func(p *WebProber) {
		p.userAgent = ua
	}
}

// WithWebMaxBodySize caps how much of the page is read for the link tally.
func WithWebMaxBodySize(size int64) WebProberOption {
	return func(p *WebProber) {
		p.maxBodySize = size
	}
}

// NewWebProber creates a WebProber with a 10 second timeout and a 5MB
// body cap.
func NewWebProber(opts ...WebProberOption) *WebProber {
	p := &WebProber{
		client:      &http.Client{Timeout: 10 * time.Second},
		userAgent:   "Mozilla/5.0 (compatible; netrecon/1.0)",
		maxBodySize: 5 * 1024 * 1024,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Probe fetches the target's web root, trying https:// first and falling
// back to http://. An unreachable target yields Reachable=false, not an
// error: for recon, "no web service" is an answer.
func (p *WebProber) Probe(ctx context.Context, host string) *model.WebRecon {
	for _, scheme := range []string{"https", "http"} {
		recon, err := p.probeScheme(ctx, scheme, host)
		if err == nil {
			return recon
		}
		if ctx.Err() != nil {
			break
		}
	}
	return &model.WebRecon{Reachable: false}
}

// probeScheme fetches scheme://host/ and summarizes the response.
func (p *WebProber) probeScheme(ctx context.Context, scheme, host string) (*model.WebRecon, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, scheme+"://"+host+"/", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBodySize))
	if err != nil {
		body = nil
	}

	recon := &model.WebRecon{
		Reachable:  true,
		Protocol:   scheme,
		FinalURL:   resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Headers:    make(map[string]string),
	}

	for _, name := range importantHeaders {
		if value := resp.Header.Get(name); value != "" {
			recon.Headers[name] = value
		}
	}

	if strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "text/html") {
		recon.LinkCount = crawler.CountHyperlinks(bytes.NewReader(body))
	}

	return recon, nil
}
