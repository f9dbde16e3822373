package protocol

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/reconforge/netrecon/internal/model"
)

// Port probe status labels. These appear verbatim in reports.
const (
	PortOpen     = "OPEN"
	PortClosed   = "CLOSED"
	PortTimeout  = "TIMEOUT"
	PortDNSError = "DNS ERROR"
)

// dialFunc establishes one TCP connection. Swappable for tests.
type dialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// PortScanner probes TCP ports with a connect timeout and classifies every
// outcome, so a filtered port reads differently from a refused one.
type PortScanner struct {
	timeout time.Duration
	dial    dialFunc
}

// PortScannerOption configures a PortScanner.
type PortScannerOption func(*PortScanner)

// WithPortTimeout sets the per-port connect timeout.
func WithPortTimeout(d time.Duration) PortScannerOption {
	return func(s *PortScanner) {
		s.timeout = d
	}
}

// WithDialer replaces the TCP dialer.
func WithDialer(dial dialFunc) PortScannerOption {
	return func(s *PortScanner) {
		s.dial = dial
	}
}

// NewPortScanner creates a PortScanner with a 2 second connect timeout.
func NewPortScanner(opts ...PortScannerOption) *PortScanner {
	s := &PortScanner{
		timeout: 2 * time.Second,
	}
	s.dial = (&net.Dialer{}).DialContext

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Probe attempts one TCP connection to host:port and classifies the result.
// It never returns an error: every outcome is a valid probe result.
func (s *PortScanner) Probe(ctx context.Context, host string, port int) model.PortResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	address := net.JoinHostPort(host, fmt.Sprintf("%d", port))

	conn, err := s.dial(ctx, "tcp", address)
	if err != nil {
		return model.PortResult{Port: port, Status: classifyDialError(err)}
	}
	conn.Close()

	return model.PortResult{Port: port, Open: true, Status: PortOpen}
}

// ProbeAll probes every port in order and returns one result per port.
// Probing stops early on context cancellation; the results collected so far
// are returned.
func (s *PortScanner) ProbeAll(ctx context.Context, host string, ports []int) []model.PortResult {
	results := make([]model.PortResult, 0, len(ports))
	for _, port := range ports {
		if ctx.Err() != nil {
			return results
		}
		results = append(results, s.Probe(ctx, host, port))
	}
	return results
}

// classifyDialError maps a dial failure to its report label. DNS failures
// are checked before timeouts because a resolver timeout is still a DNS
// problem, not a filtered port.
func classifyDialError(err error) string {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return PortDNSError
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return PortTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return PortTimeout
	}

	return PortClosed
}
