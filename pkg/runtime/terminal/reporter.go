package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/de-tools/jyotish-atlas/pkg/models/domain"
)

const reportWidth = 88

var (
	saffron = lipgloss.Color("#F4A300")
	indigo  = lipgloss.Color("#3F51B5")
	muted   = lipgloss.Color("#8A8F98")
)

// Reporter prints reports to the console with lipgloss styling.
type Reporter struct {
	writer  io.Writer
	title   lipgloss.Style
	meta    lipgloss.Style
	heading lipgloss.Style
	body    lipgloss.Style
	path    lipgloss.Style
}

// NewReporter creates a new console reporter
func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	r := lipgloss.NewRenderer(writer)

	return &Reporter{
		writer: writer,
		title: r.NewStyle().
			Bold(true).
			Foreground(saffron).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(saffron).
			Padding(0, 1),
		meta:    r.NewStyle().Foreground(muted),
		heading: r.NewStyle().Bold(true).Foreground(indigo).MarginTop(1),
		body:    r.NewStyle().Width(reportWidth).PaddingLeft(2),
		path:    r.NewStyle().Italic(true).Foreground(muted).MarginTop(1),
	}
}

func (c *Reporter) Handle(report *domain.Report, reportPath string) error {
	var b strings.Builder
	b.WriteString(c.title.Render(report.Title))
	b.WriteString("\n")
	b.WriteString(c.meta.Render("Generated on " + report.GeneratedAt.Format("2006-01-02 15:04:05")))
	b.WriteString("\n")
	b.WriteString(c.meta.Render("Birth Details: " + report.BirthDetails))
	b.WriteString("\n")

	for _, s := range report.Sections {
		b.WriteString(c.heading.Render(s.Title))
		b.WriteString("\n")
		b.WriteString(c.body.Render(s.Body))
		b.WriteString("\n")
	}

	if reportPath != "" {
		b.WriteString(c.path.Render("Report written to " + reportPath))
		b.WriteString("\n")
	}

	_, err := io.WriteString(c.writer, b.String())
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// Profile prints an attraction profile.
func (c *Reporter) Profile(p domain.Profile) error {
	out := c.title.Render("Profile for "+p.Name) + "\n" + c.body.Render(p.Message) + "\n"
	if _, err := io.WriteString(c.writer, out); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}

// Modules prints the module table.
func (c *Reporter) Modules(ids []domain.ModuleID) error {
	var b strings.Builder
	for _, id := range ids {
		marker := ""
		if id.NeedsPartner() {
			marker = c.meta.Render(" (needs partner details)")
		}
		fmt.Fprintf(&b, "%-30s %s%s\n", id.String(), c.meta.Render(id.Slug()), marker)
	}
	_, err := io.WriteString(c.writer, b.String())
	return err
}

// Text prints raw text, used for reading reports back.
func (c *Reporter) Text(s string) error {
	_, err := io.WriteString(c.writer, strings.TrimRight(s, "\n")+"\n")
	return err
}
