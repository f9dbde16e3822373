package report

import (
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/reconforge/netrecon/internal/model"
)

// MarkdownWriter outputs reports as Markdown for documentation and sharing.
type MarkdownWriter struct {
	baseWriter

	titler cases.Caser
}

// NewMarkdownWriter creates a MarkdownWriter writing to output.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		titler:     cases.Title(language.English),
	}
}

// Write outputs the report as Markdown.
func (w *MarkdownWriter) Write(report *model.ReconReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeDNS(md, report)
	w.writeWhois(md, report)
	w.writeWeb(md, report)
	w.writePorts(md, report)
	w.writeFindings(md, report)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ReconReport) {
	md.H1("Recon Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Target", "`" + report.Target + "`"},
			{"Scan ID", report.ID},
			{"Scan Date", report.DateScanned.Format("2006-01-02 15:04:05 MST")},
			{"Status", w.statusText(report)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) statusText(report *model.ReconReport) string {
	if report.TimedOut {
		return "Interrupted (partial results)"
	}
	if report.ErrorMessage != "" {
		return "Error: " + report.ErrorMessage
	}
	return "Complete"
}

func (w *MarkdownWriter) writeDNS(md *markdown.Markdown, report *model.ReconReport) {
	md.H2(w.titler.String("dns"))
	md.PlainText("")

	rows := [][]string{}
	if report.IPAddress != "" {
		rows = append(rows, []string{"A", report.IPAddress})
	}
	for _, mx := range report.MXRecords {
		rows = append(rows, []string{"MX", mx})
	}

	if len(rows) == 0 {
		md.PlainText("No records resolved.")
	} else {
		md.Table(markdown.TableSet{
			Header: []string{"Type", "Value"},
			Rows:   rows,
		})
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeWhois(md *markdown.Markdown, report *model.ReconReport) {
	if report.Whois == nil {
		return
	}

	md.H2(w.titler.String("registration"))
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Registrar", report.Whois.Registrar},
			{"Created", report.Whois.CreatedDate},
			{"Expires", report.Whois.ExpirationDate},
			{"Name Servers", strings.Join(report.Whois.NameServers, ", ")},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeWeb(md *markdown.Markdown, report *model.ReconReport) {
	if report.Web == nil {
		return
	}

	md.H2(w.titler.String("web service"))
	md.PlainText("")

	if !report.Web.Reachable {
		md.PlainText("No web service reachable.")
		md.PlainText("")
		return
	}

	rows := [][]string{
		{"URL", report.Web.FinalURL},
		{"Protocol", report.Web.Protocol},
		{"Status", strconv.Itoa(report.Web.StatusCode)},
		{"Hyperlinks", strconv.Itoa(report.Web.LinkCount)},
	}
	names := make([]string, 0, len(report.Web.Headers))
	for name := range report.Web.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rows = append(rows, []string{name, report.Web.Headers[name]})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writePorts(md *markdown.Markdown, report *model.ReconReport) {
	if len(report.Ports) == 0 {
		return
	}

	md.H2(w.titler.String("ports"))
	md.PlainText("")

	rows := make([][]string, 0, len(report.Ports))
	for _, result := range report.Ports {
		rows = append(rows, []string{strconv.Itoa(result.Port), result.Status})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Port", "Status"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, report *model.ReconReport) {
	if len(report.Findings) == 0 {
		return
	}

	md.H2(w.titler.String("findings"))
	md.PlainText("")

	rows := make([][]string, 0, len(report.Findings))
	for _, severity := range []model.Severity{
		model.SeverityHigh, model.SeverityMedium, model.SeverityLow, model.SeverityInfo,
	} {
		for _, f := range report.FindingsBySeverity(severity) {
			rows = append(rows, []string{f.SeverityText, f.Title, f.Value})
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Finding", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}
