package pipeline

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/reconforge/netrecon/internal/model"
	"github.com/reconforge/netrecon/internal/protocol"
	"github.com/reconforge/netrecon/internal/whois"
)

// TestWhoisStep tests registration lookup recording.
func TestWhoisStep(t *testing.T) {
	t.Parallel()

	t.Run("records the summary", func(t *testing.T) {
		t.Parallel()

		client := whois.NewClient(whois.WithLookup(func(_ context.Context, _ string) (string, error) {
			return "Registrar: Example Registrar\nCreation Date: 2000-01-01T00:00:00Z\n", nil
		}))

		step := NewWhoisStep(client)
		if step.Name() != "whois" {
			t.Errorf("unexpected step name %q", step.Name())
		}

		report := model.NewReconReport("example.com")
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if report.Whois == nil {
			t.Fatal("expected whois summary on report")
		}
		if report.Whois.Raw == "" {
			t.Error("expected raw whois text retained")
		}
	})

	t.Run("propagates lookup failure", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("registry unreachable")
		client := whois.NewClient(whois.WithLookup(func(_ context.Context, _ string) (string, error) {
			return "", wantErr
		}))

		report := model.NewReconReport("example.com")
		if err := NewWhoisStep(client).Do(context.Background(), report); !errors.Is(err, wantErr) {
			t.Errorf("expected lookup error, got %v", err)
		}
	})
}

// TestWebStep tests web probe recording.
func TestWebStep(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><a href="/x">x</a></body></html>`)) //nolint:errcheck
	}))
	defer server.Close()

	host := strings.TrimPrefix(server.URL, "http://")
	step := NewWebStep(protocol.NewWebProber())

	report := model.NewReconReport(host)
	if err := step.Do(context.Background(), report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Web == nil || !report.Web.Reachable {
		t.Fatal("expected reachable web service on report")
	}
	if report.Web.LinkCount != 1 {
		t.Errorf("expected 1 link, got %d", report.Web.LinkCount)
	}
}

// TestPortScanStep tests port sweep recording and findings.
func TestPortScanStep(t *testing.T) {
	t.Parallel()

	scanner := protocol.NewPortScanner(protocol.WithDialer(func(_ context.Context, _, address string) (net.Conn, error) {
		// Telnet answers, everything else refuses.
		if strings.HasSuffix(address, ":23") {
			c, s := net.Pipe()
			s.Close()
			return c, nil
		}
		return nil, errors.New("connection refused")
	}))

	step := NewPortScanStep(scanner, []int{22, 23, 80})
	report := model.NewReconReport("example.com")
	if err := step.Do(context.Background(), report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.Ports) != 3 {
		t.Fatalf("expected 3 port results, got %d", len(report.Ports))
	}
	if open := report.OpenPorts(); len(open) != 1 || open[0].Port != 23 {
		t.Errorf("expected only port 23 open, got %v", open)
	}

	var flagged bool
	for _, f := range report.Findings {
		if f.Type == "plaintext-service" && f.Value == "23" {
			flagged = true
		}
	}
	if !flagged {
		t.Error("expected a finding for the open telnet port")
	}
}
