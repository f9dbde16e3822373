package model

import (
	"testing"
	"time"
)

// TestNewReconReport verifies report construction.
func TestNewReconReport(t *testing.T) {
	t.Parallel()

	report := NewReconReport("example.com")

	if report.Target != "example.com" {
		t.Errorf("expected target example.com, got %q", report.Target)
	}
	if report.ID == "" {
		t.Error("expected a non-empty scan ID")
	}
	if time.Since(report.DateScanned) > time.Minute {
		t.Error("expected DateScanned to be recent")
	}
	if report.Findings == nil || report.Ports == nil {
		t.Error("expected initialized slices")
	}
}

// TestReconReportIDsAreUnique verifies each report gets its own ID.
func TestReconReportIDsAreUnique(t *testing.T) {
	t.Parallel()

	a := NewReconReport("example.com")
	b := NewReconReport("example.com")
	if a.ID == b.ID {
		t.Errorf("expected distinct IDs, both were %q", a.ID)
	}
}

// TestOpenPorts verifies filtering of open port results.
func TestOpenPorts(t *testing.T) {
	t.Parallel()

	report := NewReconReport("example.com")
	report.Ports = []PortResult{
		{Port: 22, Open: true, Status: "OPEN"},
		{Port: 23, Open: false, Status: "CLOSED"},
		{Port: 443, Open: true, Status: "OPEN"},
	}

	open := report.OpenPorts()
	if len(open) != 2 {
		t.Fatalf("expected 2 open ports, got %d", len(open))
	}
	if open[0].Port != 22 || open[1].Port != 443 {
		t.Errorf("expected ports [22 443] in order, got %v", open)
	}
}

// TestFindingsBySeverity verifies severity filtering preserves order.
func TestFindingsBySeverity(t *testing.T) {
	t.Parallel()

	report := NewReconReport("example.com")
	report.AddFinding(NewFinding("a", "first medium", SeverityMedium))
	report.AddFinding(NewFinding("b", "info", SeverityInfo))
	report.AddFinding(NewFinding("c", "second medium", SeverityMedium))

	medium := report.FindingsBySeverity(SeverityMedium)
	if len(medium) != 2 {
		t.Fatalf("expected 2 medium findings, got %d", len(medium))
	}
	if medium[0].Title != "first medium" || medium[1].Title != "second medium" {
		t.Errorf("severity filter reordered findings: %v", medium)
	}
}

// TestSeverityString verifies the report labels.
func TestSeverityString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityInfo, "INFO"},
		{SeverityLow, "LOW"},
		{SeverityMedium, "MEDIUM"},
		{SeverityHigh, "HIGH"},
		{Severity(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.severity.String(); got != tt.want {
			t.Errorf("Severity(%d).String() = %q, want %q", tt.severity, got, tt.want)
		}
	}
}

// TestPageHashAndSnapshot verifies page body handling.
func TestPageHashAndSnapshot(t *testing.T) {
	t.Parallel()

	t.Run("hash is stable for identical bodies", func(t *testing.T) {
		t.Parallel()

		var a, b Page
		a.ComputeHash([]byte("<html></html>"))
		b.ComputeHash([]byte("<html></html>"))
		if a.Hash == "" || a.Hash != b.Hash {
			t.Errorf("expected equal non-empty hashes, got %q and %q", a.Hash, b.Hash)
		}
	})

	t.Run("snapshot is truncated to the limit", func(t *testing.T) {
		t.Parallel()

		p := Page{Snapshot: string(make([]byte, MaxSnapshotSize+100))}
		p.TruncateSnapshot()
		if len(p.Snapshot) != MaxSnapshotSize {
			t.Errorf("expected snapshot of %d bytes, got %d", MaxSnapshotSize, len(p.Snapshot))
		}
	})
}
