package report

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/de-tools/jyotish-atlas/pkg/models/domain"
	"github.com/go-pdf/fpdf"
	"github.com/klauspost/compress/zip"
)

const timestampLayout = "2006-01-02 15:04:05"

// Renderer writes a report in one file format.
type Renderer interface {
	Render(w io.Writer, report *domain.Report) error
}

// PlainText renders the report as text. It is also the fallback for every format.
type PlainText struct{}

const plainTemplate = `{{.Title}}

Generated on {{.GeneratedAt.Format "2006-01-02 15:04:05"}}
Birth Details: {{.BirthDetails}}
{{range .Sections}}
{{underline .Title}}
{{.Body}}
{{end}}`

var plainTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"underline": func(title string) string {
		return title + "\n" + strings.Repeat("=", len(title))
	},
}).Parse(plainTemplate))

func (PlainText) Render(w io.Writer, report *domain.Report) error {
	if err := plainTmpl.Execute(w, report); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

// Docx renders a minimal WordprocessingML package.
type Docx struct{}

const (
	docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

	docxRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

	docxDocumentPart = "word/document.xml"
)

func (Docx) Render(w io.Writer, report *domain.Report) error {
	zw := zip.NewWriter(w)

	parts := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxRels},
		{docxDocumentPart, docxDocument(report)},
	}
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("create %s: %w", p.name, err)
		}
		if _, err := io.WriteString(f, p.body); err != nil {
			return fmt.Errorf("write %s: %w", p.name, err)
		}
	}
	return zw.Close()
}

func docxDocument(report *domain.Report) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)

	docxParagraph(&b, report.Title, 36, true)
	docxParagraph(&b, "Generated on "+report.GeneratedAt.Format(timestampLayout), 0, false)
	docxParagraph(&b, "Birth Details: "+report.BirthDetails, 0, false)
	for _, s := range report.Sections {
		docxParagraph(&b, s.Title, 28, true)
		docxParagraph(&b, s.Body, 0, false)
	}

	b.WriteString(`<w:sectPr/></w:body></w:document>`)
	return b.String()
}

// docxParagraph writes one paragraph; size is in half points, 0 keeps the default.
// Newlines in text become w:br line breaks.
func docxParagraph(b *strings.Builder, text string, size int, bold bool) {
	b.WriteString("<w:p><w:r>")
	if size > 0 || bold {
		b.WriteString("<w:rPr>")
		if bold {
			b.WriteString("<w:b/>")
		}
		if size > 0 {
			fmt.Fprintf(b, `<w:sz w:val="%d"/>`, size)
		}
		b.WriteString("</w:rPr>")
	}
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			b.WriteString("<w:br/>")
		}
		b.WriteString(`<w:t xml:space="preserve">`)
		_ = xml.EscapeText(b, []byte(line))
		b.WriteString("</w:t>")
	}
	b.WriteString("</w:r></w:p>")
}

// PDF renders with the core Helvetica font.
type PDF struct{}

func (PDF) Render(w io.Writer, report *domain.Report) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(report.Title, true)
	doc.SetMargins(20, 20, 20)
	doc.AddPage()
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetFont("Helvetica", "B", 16)
	doc.MultiCell(0, 8, tr(report.Title), "", "L", false)
	doc.Ln(2)

	doc.SetFont("Helvetica", "", 10)
	doc.MultiCell(0, 5, tr("Generated on "+report.GeneratedAt.Format(timestampLayout)), "", "L", false)
	doc.MultiCell(0, 5, tr("Birth Details: "+report.BirthDetails), "", "L", false)

	for _, s := range report.Sections {
		doc.Ln(4)
		doc.SetFont("Helvetica", "B", 13)
		doc.MultiCell(0, 7, tr(s.Title), "", "L", false)
		doc.SetFont("Helvetica", "", 11)
		doc.MultiCell(0, 5.5, tr(s.Body), "", "L", false)
	}

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
