package pipeline

import (
	"context"
	"fmt"

	"github.com/reconforge/netrecon/internal/dnsx"
	"github.com/reconforge/netrecon/internal/model"
	"github.com/reconforge/netrecon/internal/protocol"
	"github.com/reconforge/netrecon/internal/whois"
)

// DNSStep resolves the target's IPv4 address and mail exchangers.
type DNSStep struct {
	resolver *dnsx.Resolver
}

// NewDNSStep creates the DNS resolution step.
func NewDNSStep(resolver *dnsx.Resolver) *DNSStep {
	return &DNSStep{resolver: resolver}
}

// Name returns the step name.
func (s *DNSStep) Name() string { return "dns" }

// Do resolves the target. A missing MX record is normal and never fails
// the step; a target that does not resolve at all does.
func (s *DNSStep) Do(ctx context.Context, report *model.ReconReport) error {
	ip, err := s.resolver.Resolve(ctx, report.Target)
	if err != nil {
		return fmt.Errorf("pipeline: dns step: %w", err)
	}
	report.IPAddress = ip

	if mx, err := s.resolver.LookupMX(ctx, report.Target); err == nil {
		report.MXRecords = mx
	}

	return nil
}

// WhoisStep fetches the target's registration summary.
type WhoisStep struct {
	client *whois.Client
}

// NewWhoisStep creates the WHOIS lookup step.
func NewWhoisStep(client *whois.Client) *WhoisStep {
	return &WhoisStep{client: client}
}

// Name returns the step name.
func (s *WhoisStep) Name() string { return "whois" }

// Do records the WHOIS summary on the report.
func (s *WhoisStep) Do(ctx context.Context, report *model.ReconReport) error {
	summary, err := s.client.Lookup(ctx, report.Target)
	if err != nil {
		return fmt.Errorf("pipeline: whois step: %w", err)
	}
	report.Whois = summary
	return nil
}

// WebStep probes the target's web service.
type WebStep struct {
	prober *protocol.WebProber
}

// NewWebStep creates the web probe step.
func NewWebStep(prober *protocol.WebProber) *WebStep {
	return &WebStep{prober: prober}
}

// Name returns the step name.
func (s *WebStep) Name() string { return "web" }

// Do records the web probe outcome. An unreachable web service is an
// answer, not a failure.
func (s *WebStep) Do(ctx context.Context, report *model.ReconReport) error {
	report.Web = s.prober.Probe(ctx, report.Target)
	return nil
}

// PortScanStep sweeps the common service ports.
type PortScanStep struct {
	scanner *protocol.PortScanner
	ports   []int
}

// NewPortScanStep creates the port sweep step.
func NewPortScanStep(scanner *protocol.PortScanner, ports []int) *PortScanStep {
	return &PortScanStep{scanner: scanner, ports: ports}
}

// Name returns the step name.
func (s *PortScanStep) Name() string { return "ports" }

// plaintextServices maps open ports worth flagging to their protocol.
var plaintextServices = map[int]string{
	21: "FTP",
	23: "Telnet",
}

// Do probes every configured port and flags open plaintext services.
func (s *PortScanStep) Do(ctx context.Context, report *model.ReconReport) error {
	report.Ports = s.scanner.ProbeAll(ctx, report.Target, s.ports)

	for _, result := range report.Ports {
		service, risky := plaintextServices[result.Port]
		if !risky || !result.Open {
			continue
		}

		f := model.NewFinding("plaintext-service", service+" port open", model.SeverityMedium)
		f.Description = fmt.Sprintf("%s transmits credentials unencrypted.", service)
		f.Value = fmt.Sprintf("%d", result.Port)
		f.Location = "port scan"
		report.AddFinding(f)
	}

	return nil
}
