package model

// Severity ranks the risk level of a reconnaissance finding.
type Severity int

const (
	// SeverityInfo marks observations with no direct security impact,
	// such as server software identification.
	SeverityInfo Severity = iota

	// SeverityLow marks minor issues, such as a single missing
	// defense-in-depth header.
	SeverityLow

	// SeverityMedium marks issues that warrant attention, such as absent
	// transport security or a cleartext administrative service.
	SeverityMedium

	// SeverityHigh marks serious exposures, such as an open database port
	// reachable from the scanning host.
	SeverityHigh
)

// String returns the uppercase label used in reports.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// Finding is a single ranked observation produced during reconnaissance.
type Finding struct {
	// Type is a stable identifier for the finding category,
	// e.g. "missing_security_header" or "open_port".
	Type string `json:"type"`

	// Title is a short human-readable description.
	Title string `json:"title"`

	// Description explains the observation in detail.
	Description string `json:"description,omitempty"`

	// Severity is the ranked risk level.
	Severity Severity `json:"severity"`

	// SeverityText is the string form of Severity, duplicated for
	// serialized output.
	SeverityText string `json:"severity_text"`

	// Value is the concrete observed value, e.g. a header value or port.
	Value string `json:"value,omitempty"`

	// Location is where the finding was observed, e.g. a URL or host:port.
	Location string `json:"location,omitempty"`
}

// NewFinding builds a Finding with SeverityText filled from the severity.
func NewFinding(findingType, title string, severity Severity) Finding {
	return Finding{
		Type:         findingType,
		Title:        title,
		Severity:     severity,
		SeverityText: severity.String(),
	}
}
