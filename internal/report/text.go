package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/reconforge/netrecon/internal/model"
)

// TextWriter outputs human-readable reports for terminal display.
type TextWriter struct {
	baseWriter

	verbose bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithVerbose adds raw detail sections to the output.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter creates a TextWriter writing to output.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report as sectioned plain text.
func (w *TextWriter) Write(report *model.ReconReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeDNS(&sb, report)
	w.writeWhois(&sb, report)
	w.writeWeb(&sb, report)
	w.writePorts(&sb, report)
	w.writeFindings(&sb, report)

	return fmt.Fprint(w.output, sb.String())
}

func (w *TextWriter) writeHeader(sb *strings.Builder, report *model.ReconReport) {
	fmt.Fprintf(sb, "=== Recon Report: %s ===\n", report.Target)
	fmt.Fprintf(sb, "Scan ID:   %s\n", report.ID)
	fmt.Fprintf(sb, "Date:      %s\n", report.DateScanned.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Steps:     %s\n", strings.Join(report.PerformedSteps, ", "))
	if report.TimedOut {
		fmt.Fprintln(sb, "Status:    interrupted (partial results)")
	} else if report.ErrorMessage != "" {
		fmt.Fprintf(sb, "Status:    error (%s)\n", report.ErrorMessage)
	} else {
		fmt.Fprintln(sb, "Status:    complete")
	}
	fmt.Fprintln(sb)
}

func (w *TextWriter) writeDNS(sb *strings.Builder, report *model.ReconReport) {
	fmt.Fprintln(sb, "[DNS]")
	if report.IPAddress == "" {
		fmt.Fprintln(sb, "  no IPv4 address resolved")
	} else {
		fmt.Fprintf(sb, "  IP address: %s\n", report.IPAddress)
	}
	for _, mx := range report.MXRecords {
		fmt.Fprintf(sb, "  MX: %s\n", mx)
	}
	fmt.Fprintln(sb)
}

func (w *TextWriter) writeWhois(sb *strings.Builder, report *model.ReconReport) {
	if report.Whois == nil {
		return
	}

	fmt.Fprintln(sb, "[WHOIS]")
	if report.Whois.Registrar != "" {
		fmt.Fprintf(sb, "  Registrar: %s\n", report.Whois.Registrar)
	}
	if report.Whois.CreatedDate != "" {
		fmt.Fprintf(sb, "  Created:   %s\n", report.Whois.CreatedDate)
	}
	if report.Whois.ExpirationDate != "" {
		fmt.Fprintf(sb, "  Expires:   %s\n", report.Whois.ExpirationDate)
	}
	for _, ns := range report.Whois.NameServers {
		fmt.Fprintf(sb, "  NS: %s\n", ns)
	}
	if w.verbose && report.Whois.Raw != "" {
		fmt.Fprintln(sb, "  --- raw record ---")
		for _, line := range strings.Split(strings.TrimSpace(report.Whois.Raw), "\n") {
			fmt.Fprintf(sb, "  %s\n", line)
		}
	}
	fmt.Fprintln(sb)
}

func (w *TextWriter) writeWeb(sb *strings.Builder, report *model.ReconReport) {
	if report.Web == nil {
		return
	}

	fmt.Fprintln(sb, "[Web]")
	if !report.Web.Reachable {
		fmt.Fprintln(sb, "  no web service reachable")
		fmt.Fprintln(sb)
		return
	}

	fmt.Fprintf(sb, "  URL:    %s\n", report.Web.FinalURL)
	fmt.Fprintf(sb, "  Status: %d (%s)\n", report.Web.StatusCode, report.Web.Protocol)
	fmt.Fprintf(sb, "  Links:  %d\n", report.Web.LinkCount)

	names := make([]string, 0, len(report.Web.Headers))
	for name := range report.Web.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(sb, "  %s: %s\n", name, report.Web.Headers[name])
	}
	fmt.Fprintln(sb)
}

func (w *TextWriter) writePorts(sb *strings.Builder, report *model.ReconReport) {
	if len(report.Ports) == 0 {
		return
	}

	fmt.Fprintln(sb, "[Ports]")
	for _, result := range report.Ports {
		fmt.Fprintf(sb, "  %5d  %s\n", result.Port, result.Status)
	}
	fmt.Fprintln(sb)
}

func (w *TextWriter) writeFindings(sb *strings.Builder, report *model.ReconReport) {
	if len(report.Findings) == 0 {
		return
	}

	fmt.Fprintln(sb, "[Findings]")
	for _, severity := range []model.Severity{
		model.SeverityHigh, model.SeverityMedium, model.SeverityLow, model.SeverityInfo,
	} {
		for _, f := range report.FindingsBySeverity(severity) {
			fmt.Fprintf(sb, "  [%s] %s", f.SeverityText, f.Title)
			if f.Value != "" {
				fmt.Fprintf(sb, " (%s)", f.Value)
			}
			fmt.Fprintln(sb)
			if w.verbose && f.Description != "" {
				fmt.Fprintf(sb, "         %s\n", f.Description)
			}
		}
	}
	fmt.Fprintln(sb)
}
