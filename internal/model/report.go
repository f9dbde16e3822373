package model

import (
	"time"

	"github.com/google/uuid"
)

// WebRecon holds the web portion of a reconnaissance run.
type WebRecon struct {
	// Reachable is true if either HTTPS or HTTP answered.
	Reachable bool `json:"reachable"`

	// Protocol is the scheme that succeeded, "https" or "http".
	Protocol string `json:"protocol,omitempty"`

	// FinalURL is the URL after redirects.
	FinalURL string `json:"final_url,omitempty"`

	// StatusCode is the HTTP status of the successful response.
	StatusCode int `json:"status_code,omitempty"`

	// Headers holds the analyzed subset of response headers
	// (Server, Content-Type, X-Powered-By, X-Frame-Options, ...).
	Headers map[string]string `json:"headers,omitempty"`

	// LinkCount is the number of hyperlinks on the landing page.
	LinkCount int `json:"link_count"`
}

// PortResult records the outcome of probing one TCP port.
type PortResult struct {
	// Port is the probed port number.
	Port int `json:"port"`

	// Open is true if the TCP connection succeeded.
	Open bool `json:"open"`

	// Status is the probe classification: OPEN, CLOSED, TIMEOUT or DNS ERROR.
	Status string `json:"status"`
}

// WhoisSummary holds the parsed WHOIS fields relevant to reconnaissance.
type WhoisSummary struct {
	// Registrar is the sponsoring registrar name.
	Registrar string `json:"registrar,omitempty"`

	// CreatedDate is the domain registration date as reported.
	CreatedDate string `json:"created_date,omitempty"`

	// ExpirationDate is the registration expiry date as reported.
	ExpirationDate string `json:"expiration_date,omitempty"`

	// NameServers lists the delegated name servers.
	NameServers []string `json:"name_servers,omitempty"`

	// Raw is the unparsed WHOIS response, kept for the JSON report.
	Raw string `json:"-"`
}

// ReconReport accumulates all results of one reconnaissance run against a
// single target domain. Pipeline steps fill in their sections as they
// execute; the report is also what gets persisted and rendered.
type ReconReport struct {
	// ID uniquely identifies this scan for database storage.
	ID string `json:"id"`

	// Target is the domain under reconnaissance.
	Target string `json:"target"`

	// DateScanned is when the run started.
	DateScanned time.Time `json:"date_scanned"`

	// IPAddress is the resolved IPv4 address, empty if resolution failed.
	IPAddress string `json:"ip_address,omitempty"`

	// MXRecords lists mail exchangers as "preference host".
	MXRecords []string `json:"mx_records,omitempty"`

	// Whois holds the WHOIS summary, nil if the lookup failed or was skipped.
	Whois *WhoisSummary `json:"whois,omitempty"`

	// Web holds the web reconnaissance results, nil until the web step ran.
	Web *WebRecon `json:"web,omitempty"`

	// Ports lists per-port probe results in probe order.
	Ports []PortResult `json:"ports,omitempty"`

	// Findings lists ranked observations from all steps.
	Findings []Finding `json:"findings,omitempty"`

	// PerformedSteps lists the pipeline steps that actually ran.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// TimedOut is true if the run was cut short by cancellation.
	TimedOut bool `json:"timed_out"`

	// Error holds the first step error, nil if all steps succeeded.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for serialized output.
	ErrorMessage string `json:"error,omitempty"`
}

// NewReconReport creates an empty report for the given target with a fresh
// scan ID and the current timestamp.
func NewReconReport(target string) *ReconReport {
	return &ReconReport{
		ID:          uuid.NewString(),
		Target:      target,
		DateScanned: time.Now(),
		Findings:    make([]Finding, 0),
		Ports:       make([]PortResult, 0),
	}
}

// AddFinding appends a finding to the report.
func (r *ReconReport) AddFinding(f Finding) {
	r.Findings = append(r.Findings, f)
}

// OpenPorts returns the subset of port results that were open, in order.
func (r *ReconReport) OpenPorts() []PortResult {
	open := make([]PortResult, 0, len(r.Ports))
	for _, p := range r.Ports {
		if p.Open {
			open = append(open, p)
		}
	}
	return open
}

// FindingsBySeverity returns the findings with the given severity, in order.
func (r *ReconReport) FindingsBySeverity(s Severity) []Finding {
	matched := make([]Finding, 0)
	for _, f := range r.Findings {
		if f.Severity == s {
			matched = append(matched, f)
		}
	}
	return matched
}
