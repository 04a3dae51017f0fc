package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/de-tools/jyotish-atlas/pkg/models/domain"
	"github.com/de-tools/jyotish-atlas/pkg/models/store"
	"github.com/de-tools/jyotish-atlas/pkg/store/duckdb/reports"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Sink receives the record of every written report.
type Sink interface {
	Name() string
	Store(ctx context.Context, record store.ReportRecord) error
}

// Exported describes a written report file.
type Exported struct {
	ID       string
	Path     string
	Format   domain.ReportFormat
	Fallback bool
}

type Settings struct {
	OutputDir string
	// RichFormats disables the docx and pdf renderers when false.
	RichFormats bool
}

type Exporter struct {
	dir       string
	renderers map[domain.ReportFormat]Renderer
	fallback  Renderer
	sinks     []Sink
	now       func() time.Time
}

type Option func(*Exporter)

func WithSinks(sinks ...Sink) Option {
	return func(e *Exporter) {
		e.sinks = append(e.sinks, sinks...)
	}
}

// WithRenderer registers or, with a nil renderer, unregisters a format.
func WithRenderer(format domain.ReportFormat, r Renderer) Option {
	return func(e *Exporter) {
		if r == nil {
			delete(e.renderers, format)
			return
		}
		e.renderers[format] = r
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		e.now = now
	}
}

func NewExporter(settings Settings, opts ...Option) *Exporter {
	dir := settings.OutputDir
	if dir == "" {
		dir = "reports"
	}

	e := &Exporter{
		dir:       dir,
		renderers: map[domain.ReportFormat]Renderer{},
		fallback:  PlainText{},
		now:       time.Now,
	}
	if settings.RichFormats {
		e.renderers[domain.FormatDocx] = Docx{}
		e.renderers[domain.FormatPDF] = PDF{}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export writes the report for chart and results, then notifies the sinks.
func (e *Exporter) Export(ctx context.Context, chart domain.Chart, results []domain.ModuleResult, format domain.ReportFormat) (Exported, error) {
	logger := zerolog.Ctx(ctx)

	if format != domain.FormatDocx && format != domain.FormatPDF {
		return Exported{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}

	generatedAt := e.now()
	doc := domain.NewReport(chart, results, generatedAt)

	renderer, ok := e.renderers[format]
	fallback := !ok
	if fallback {
		renderer = e.fallback
		logger.Warn().Str("format", string(format)).Msg("renderer unavailable, writing plain text")
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, doc); err != nil {
		return Exported{}, fmt.Errorf("%w: %v", domain.ErrExport, err)
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return Exported{}, fmt.Errorf("%w: create output dir: %v", domain.ErrExport, err)
	}
	path := filepath.Join(e.dir, FileName(chart.Name(), generatedAt, format))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return Exported{}, fmt.Errorf("%w: write %s: %v", domain.ErrExport, path, err)
	}

	out := Exported{
		ID:       uuid.NewString(),
		Path:     path,
		Format:   format,
		Fallback: fallback,
	}
	logger.Info().Str("path", path).Bool("fallback", fallback).Msg("report exported")

	modules := make([]string, 0, len(results))
	for _, r := range results {
		modules = append(modules, r.Module.String())
	}
	record := store.ReportRecord{
		ID:          out.ID,
		Name:        chart.Name(),
		Format:      string(format),
		Path:        path,
		Fallback:    fallback,
		ModuleCount: len(results),
		Modules:     modules,
		CreatedAt:   generatedAt,
	}
	for _, sink := range e.sinks {
		if err := sink.Store(ctx, record); err != nil {
			logger.Error().Err(err).Str("sink", sink.Name()).Msg("report sink failed")
		}
	}

	return out, nil
}

// FileName is "<name lowercased, spaces as underscores>_<UTC yyyymmddHHMMSS><ext>".
func FileName(name string, at time.Time, format domain.ReportFormat) string {
	base := strings.ReplaceAll(strings.ToLower(name), " ", "_")
	base = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, base)
	return base + "_" + at.UTC().Format("20060102150405") + format.Extension()
}

type indexSink struct {
	store reports.Store
}

// NewIndexSink records exported reports in the DuckDB report index.
func NewIndexSink(s reports.Store) Sink {
	return &indexSink{store: s}
}

func (s *indexSink) Name() string {
	return "duckdb"
}

func (s *indexSink) Store(ctx context.Context, record store.ReportRecord) error {
	return s.store.Add(ctx, record)
}
