package protocol

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/reconforge/netrecon/internal/model"
)

// TestPortScannerProbe tests TCP probe outcome classification.
func TestPortScannerProbe(t *testing.T) {
	t.Parallel()

	t.Run("open port", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatal(err)
		}
		defer ln.Close()
		go func() {
			for {
				conn, err := ln.Accept()
				if err != nil {
					return
				}
				conn.Close()
			}
		}()

		port := ln.Addr().(*net.TCPAddr).Port
		scanner := NewPortScanner()

		result := scanner.Probe(context.Background(), "127.0.0.1", port)
		if !result.Open {
			t.Errorf("expected open port, got status %q", result.Status)
		}
		if result.Status != PortOpen {
			t.Errorf("expected status %q, got %q", PortOpen, result.Status)
		}
	})

	t.Run("closed port", func(t *testing.T) {
		t.Parallel()

		// Bind and immediately close to get a port nothing listens on.
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatal(err)
		}
		port := ln.Addr().(*net.TCPAddr).Port
		ln.Close()

		scanner := NewPortScanner()
		result := scanner.Probe(context.Background(), "127.0.0.1", port)

		if result.Open {
			t.Error("expected closed port")
		}
		if result.Status != PortClosed {
			t.Errorf("expected status %q, got %q", PortClosed, result.Status)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()

		scanner := NewPortScanner(WithDialer(func(ctx context.Context, _, _ string) (net.Conn, error) {
			<-ctx.Done()
			return nil, &net.OpError{Op: "dial", Err: context.DeadlineExceeded}
		}), WithPortTimeout(50*time.Millisecond))

		result := scanner.Probe(context.Background(), "10.255.255.1", 81)
		if result.Status != PortTimeout {
			t.Errorf("expected status %q, got %q", PortTimeout, result.Status)
		}
	})

	t.Run("dns error", func(t *testing.T) {
		t.Parallel()

		scanner := NewPortScanner(WithDialer(func(_ context.Context, _, _ string) (net.Conn, error) {
			return nil, &net.DNSError{Err: "no such host", Name: "nohost.invalid"}
		}))

		result := scanner.Probe(context.Background(), "nohost.invalid", 80)
		if result.Status != PortDNSError {
			t.Errorf("expected status %q, got %q", PortDNSError, result.Status)
		}
	})
}

// TestPortScannerProbeAll tests multi-port sweeps.
func TestPortScannerProbeAll(t *testing.T) {
	t.Parallel()

	t.Run("one result per port in order", func(t *testing.T) {
		t.Parallel()

		scanner := NewPortScanner(WithDialer(func(_ context.Context, _, address string) (net.Conn, error) {
			if strings.HasSuffix(address, ":22") {
				return nil, errors.New("connection refused")
			}
			c, s := net.Pipe()
			s.Close()
			return c, nil
		}))

		results := scanner.ProbeAll(context.Background(), "example.com", []int{21, 22, 80})
		if len(results) != 3 {
			t.Fatalf("expected 3 results, got %d", len(results))
		}

		if !results[0].Open || results[0].Port != 21 {
			t.Errorf("expected port 21 open, got %+v", results[0])
		}
		if results[1].Open || results[1].Status != PortClosed {
			t.Errorf("expected port 22 closed, got %+v", results[1])
		}
		if !results[2].Open {
			t.Errorf("expected port 80 open, got %+v", results[2])
		}
	})

	t.Run("stops on cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		probes := 0
		scanner := NewPortScanner(WithDialer(func(_ context.Context, _, _ string) (net.Conn, error) {
			probes++
			if probes == 2 {
				cancel()
			}
			return nil, errors.New("connection refused")
		}))

		results := scanner.ProbeAll(ctx, "example.com", []int{1, 2, 3, 4, 5})
		if len(results) != 2 {
			t.Errorf("expected 2 results before cancellation, got %d", len(results))
		}
	})
}

// TestAnalyzeHeaders tests security findings derived from headers.
func TestAnalyzeHeaders(t *testing.T) {
	t.Parallel()

	t.Run("reports every missing security header", func(t *testing.T) {
		t.Parallel()

		findings := AnalyzeHeaders(http.Header{})

		missing := 0
		for _, f := range findings {
			if f.Type == "missing-security-header" {
				missing++
			}
		}
		if missing != len(securityHeaders) {
			t.Errorf("expected %d missing-header findings, got %d", len(securityHeaders), missing)
		}
	})

	t.Run("present headers produce no findings", func(t *testing.T) {
		t.Parallel()

		headers := http.Header{}
		headers.Set("Strict-Transport-Security", "max-age=63072000")
		headers.Set("Content-Security-Policy", "default-src 'self'")
		headers.Set("X-Frame-Options", "DENY")
		headers.Set("X-Content-Type-Options", "nosniff")
		headers.Set("Referrer-Policy", "no-referrer")

		findings := AnalyzeHeaders(headers)
		for _, f := range findings {
			if f.Type == "missing-security-header" {
				t.Errorf("unexpected missing-header finding: %s", f.Title)
			}
		}
	})

	t.Run("flags server version disclosure", func(t *testing.T) {
		t.Parallel()

		headers := http.Header{}
		headers.Set("Server", "nginx/1.24.0")

		findings := AnalyzeHeaders(headers)
		found := false
		for _, f := range findings {
			if f.Type == "software-disclosure" && f.Value == "nginx/1.24.0" {
				found = true
			}
		}
		if !found {
			t.Error("expected server disclosure finding")
		}
	})

	t.Run("versionless server header is not flagged", func(t *testing.T) {
		t.Parallel()

		headers := http.Header{}
		headers.Set("Server", "nginx")

		for _, f := range AnalyzeHeaders(headers) {
			if f.Type == "software-disclosure" && f.Location == "Server header" {
				t.Error("server header without a version should not be flagged")
			}
		}
	})

	t.Run("flags insecure cookies", func(t *testing.T) {
		t.Parallel()

		headers := http.Header{}
		headers.Add("Set-Cookie", "session=abc; Path=/")
		headers.Add("Set-Cookie", "pref=1; Secure; HttpOnly")

		var cookieFindings []model.Finding
		for _, f := range AnalyzeHeaders(headers) {
			if f.Type == "insecure-cookie" {
				cookieFindings = append(cookieFindings, f)
			}
		}

		// The first cookie is missing both attributes, the second neither.
		if len(cookieFindings) != 2 {
			t.Fatalf("expected 2 cookie findings, got %d", len(cookieFindings))
		}
		for _, f := range cookieFindings {
			if f.Value != "session" {
				t.Errorf("expected finding for 'session' cookie, got %q", f.Value)
			}
		}
	})
}

// TestHeaderScannerScan tests the live header fetch.
func TestHeaderScannerScan(t *testing.T) {
	t.Parallel()

	t.Run("collects status, headers, and findings", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Server", "Apache/2.4.41")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		scanner := NewHeaderScanner(WithHeaderClient(server.Client()))
		result, err := scanner.Scan(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.StatusCode != http.StatusOK {
			t.Errorf("expected status 200, got %d", result.StatusCode)
		}
		if result.Headers.Get("Server") != "Apache/2.4.41" {
			t.Errorf("expected server header, got %q", result.Headers.Get("Server"))
		}
		if len(result.Findings) == 0 {
			t.Error("expected findings for missing security headers")
		}
	})

	t.Run("unreachable host returns error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
		dead := server.URL
		server.Close()

		scanner := NewHeaderScanner()
		if _, err := scanner.Scan(context.Background(), dead); err == nil {
			t.Error("expected error for unreachable host")
		}
	})
}

// TestWebProberProbe tests the https-to-http fallback probe.
func TestWebProberProbe(t *testing.T) {
	t.Parallel()

	t.Run("falls back to http and counts links", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Header().Set("Server", "nginx")
			_, _ = w.Write([]byte(`<html><body><a href="/a">a</a><a href="/b">b</a></body></html>`)) //nolint:errcheck
		}))
		defer server.Close()

		// The https attempt against this plain HTTP listener fails, so the
		// prober must fall back to http.
		host := strings.TrimPrefix(server.URL, "http://")
		prober := NewWebProber(WithWebMaxBodySize(1024 * 1024))

		recon := prober.Probe(context.Background(), host)
		if !recon.Reachable {
			t.Fatal("expected target to be reachable")
		}
		if recon.Protocol != "http" {
			t.Errorf("expected http fallback, got %q", recon.Protocol)
		}
		if recon.StatusCode != http.StatusOK {
			t.Errorf("expected status 200, got %d", recon.StatusCode)
		}
		if recon.LinkCount != 2 {
			t.Errorf("expected 2 links, got %d", recon.LinkCount)
		}
		if recon.Headers["Server"] != "nginx" {
			t.Errorf("expected Server header kept, got %v", recon.Headers)
		}
	})

	t.Run("unreachable target reports not reachable", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
		host := strings.TrimPrefix(server.URL, "http://")
		server.Close()

		prober := NewWebProber(WithWebClient(&http.Client{Timeout: time.Second}))
		recon := prober.Probe(context.Background(), host)

		if recon.Reachable {
			t.Error("expected target to be unreachable")
		}
	})
}
