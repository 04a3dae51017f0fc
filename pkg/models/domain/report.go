package domain

import (
	"fmt"
	"strings"
	"time"
)

// ModuleResult is one analyzed module.
type ModuleResult struct {
	Module   ModuleID
	Analysis string
}

// AnalysisResponse is the ordered outcome of one request.
type AnalysisResponse struct {
	Name       string
	Results    []ModuleResult
	ReportPath string
}

// Profile is the Venus, Mars and Moon attraction profile of one chart.
type Profile struct {
	Name    string
	Message string
}

// ReportFormat selects the export artifact.
type ReportFormat string

const (
	FormatJSON ReportFormat = "json"
	FormatDocx ReportFormat = "docx"
	FormatPDF  ReportFormat = "pdf"
)

// ParseReportFormat treats an empty value as json.
func ParseReportFormat(s string) (ReportFormat, error) {
	switch ReportFormat(strings.ToLower(s)) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatDocx, "document":
		return FormatDocx, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Extension is the file extension written for the format.
func (f ReportFormat) Extension() string {
	return "." + string(f)
}

// Report represents a complete export document
type Report struct {
	Title        string
	GeneratedAt  time.Time
	BirthDetails string
	Sections     []ReportSection
}

// ReportSection is a heading followed by its body text
type ReportSection struct {
	Title string
	Body  string
}

// NewReport lays out a chart and its results in export order.
func NewReport(chart Chart, results []ModuleResult, generatedAt time.Time) *Report {
	sections := make([]ReportSection, 0, len(results))
	for _, r := range results {
		sections = append(sections, ReportSection{Title: r.Module.String(), Body: r.Analysis})
	}
	return &Report{
		Title:        "Astrological Report for " + chart.Name(),
		GeneratedAt:  generatedAt,
		BirthDetails: BirthSummary(chart),
		Sections:     sections,
	}
}

// BirthSummary renders e.g. "1990-05-15 10:30:00 (UTC+5.0), Location: Karachi".
func BirthSummary(chart Chart) string {
	return fmt.Sprintf("%s (UTC%+.1f), Location: %s",
		chart.Birth().Format("2006-01-02 15:04:05"), chart.UTCOffset(), chart.Location())
}
