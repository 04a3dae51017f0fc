package orchestrator

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/de-tools/jyotish-atlas/pkg/metrics"
	"github.com/de-tools/jyotish-atlas/pkg/models/domain"
	"github.com/de-tools/jyotish-atlas/pkg/services/analysis"
	"github.com/de-tools/jyotish-atlas/pkg/services/chart"
	"github.com/de-tools/jyotish-atlas/pkg/services/events"
	"github.com/de-tools/jyotish-atlas/pkg/services/report"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Entry is the entry point a request came through; it picks the default module list.
type Entry string

const (
	EntryAnalyze Entry = "analyze"
	EntryModules Entry = "modules"
	EntryModule  Entry = "module"
	EntryProfile Entry = "profile"
)

// Partner holds the second person's fields. Nil means the field was absent.
type Partner struct {
	Name      *string
	BirthDate *string
	BirthTime *string
	Location  *string
	UTCOffset *float64
}

// Details returns the partner's birth details or ErrMissingPartnerDetails naming
// the absent fields.
func (p Partner) Details() (domain.BirthDetails, error) {
	var missing []string
	text := func(field string, v *string) string {
		if v == nil || strings.TrimSpace(*v) == "" {
			missing = append(missing, field)
			return ""
		}
		return *v
	}

	d := domain.BirthDetails{
		Name:      text("second_name", p.Name),
		BirthDate: text("second_birth_date", p.BirthDate),
		BirthTime: text("second_birth_time", p.BirthTime),
		Location:  text("second_location", p.Location),
	}
	if p.UTCOffset == nil {
		missing = append(missing, "second_utc_offset")
	} else {
		d.UTCOffset = *p.UTCOffset
	}

	if len(missing) > 0 {
		return domain.BirthDetails{}, fmt.Errorf("%w: missing %s", domain.ErrMissingPartnerDetails, strings.Join(missing, ", "))
	}
	return d, nil
}

type Request struct {
	Person  domain.BirthDetails
	Partner Partner
	// Modules are wire names; empty selects the entry point's default list.
	Modules []string
	Entry   Entry
	Format  domain.ReportFormat
	// Gender appends gender-specific context to the modules that have one.
	Gender domain.Gender
}

type Exporter interface {
	Export(ctx context.Context, chart domain.Chart, results []domain.ModuleResult, format domain.ReportFormat) (report.Exported, error)
}

type Service struct {
	charts    chart.Computer
	analyzer  analysis.Analyzer
	exporter  Exporter
	publisher events.Publisher
	metrics   *metrics.Metrics
	now       func() time.Time
}

type Option func(*Service)

func WithExporter(e Exporter) Option {
	return func(s *Service) { s.exporter = e }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(charts chart.Computer, analyzer analysis.Analyzer, opts ...Option) (*Service, error) {
	if charts == nil {
		return nil, fmt.Errorf("chart computer is nil")
	}
	if analyzer == nil {
		return nil, fmt.Errorf("analyzer is nil")
	}

	s := &Service{
		charts:    charts,
		analyzer:  analyzer,
		publisher: events.Nop{},
		metrics:   metrics.New(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DefaultModules is the module list used when a request names none.
func DefaultModules(entry Entry) []domain.ModuleID {
	if entry == EntryAnalyze {
		return append([]domain.ModuleID(nil), domain.AllModules...)
	}
	return domain.SingleChartModules()
}

// Run validates the request, computes the chart(s), runs the analyzers in request
// order and optionally exports a report.
func (s *Service) Run(ctx context.Context, req Request) (domain.AnalysisResponse, error) {
	resp, err := s.run(ctx, req)
	s.metrics.Analyses.WithLabelValues(string(req.Entry), metrics.Outcome(err)).Inc()
	return resp, err
}

// RunModule analyzes exactly one module.
func (s *Service) RunModule(ctx context.Context, id domain.ModuleID, req Request) (domain.ModuleResult, error) {
	req.Modules = []string{id.String()}
	req.Entry = EntryModule
	req.Format = domain.FormatJSON

	resp, err := s.Run(ctx, req)
	if err != nil {
		return domain.ModuleResult{}, err
	}
	return resp.Results[0], nil
}

// Profile computes one chart and returns its attraction profile.
func (s *Service) Profile(ctx context.Context, person domain.BirthDetails) (domain.Profile, error) {
	p, err := s.profile(ctx, person)
	s.metrics.Analyses.WithLabelValues(string(EntryProfile), metrics.Outcome(err)).Inc()
	return p, err
}

func (s *Service) profile(ctx context.Context, person domain.BirthDetails) (domain.Profile, error) {
	if err := validatePerson(person); err != nil {
		return domain.Profile{}, err
	}

	c, err := s.compute(ctx, person)
	if err != nil {
		return domain.Profile{}, err
	}

	p, err := s.analyzer.Profile(c)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("profile: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("entry", string(EntryProfile)).Msg("profile completed")
	return p, nil
}

func (s *Service) run(ctx context.Context, req Request) (domain.AnalysisResponse, error) {
	logger := zerolog.Ctx(ctx)

	if err := validatePerson(req.Person); err != nil {
		return domain.AnalysisResponse{}, err
	}

	modules, err := s.moduleList(req)
	if err != nil {
		return domain.AnalysisResponse{}, err
	}

	var partner *domain.BirthDetails
	if needsPartner(modules) {
		d, err := req.Partner.Details()
		if err != nil {
			return domain.AnalysisResponse{}, err
		}
		partner = &d
	}

	format := req.Format
	if format == "" {
		format = domain.FormatJSON
	}
	if format != domain.FormatJSON && s.exporter == nil {
		return domain.AnalysisResponse{}, fmt.Errorf("%w: no exporter configured", domain.ErrExport)
	}

	chartA, chartB, err := s.computeCharts(ctx, req.Person, partner)
	if err != nil {
		return domain.AnalysisResponse{}, err
	}

	results := make([]domain.ModuleResult, 0, len(modules))
	for _, id := range modules {
		text, err := s.analyze(id, chartA, chartB)
		if err != nil {
			return domain.AnalysisResponse{}, fmt.Errorf("analyze %s: %w", id, err)
		}
		text = s.analyzer.WithGender(id, req.Gender, text)
		s.metrics.ModuleRuns.WithLabelValues(id.Slug()).Inc()
		results = append(results, domain.ModuleResult{Module: id, Analysis: text})
	}

	resp := domain.AnalysisResponse{Name: req.Person.Name, Results: results}

	if format != domain.FormatJSON {
		out, err := s.exporter.Export(ctx, chartA, results, format)
		if err != nil {
			return domain.AnalysisResponse{}, err
		}
		s.metrics.Exports.WithLabelValues(string(out.Format), strconv.FormatBool(out.Fallback)).Inc()
		resp.ReportPath = out.Path
	}

	if err := s.publisher.Publish(ctx, events.NewAnalysisCompleted(resp, s.now())); err != nil {
		logger.Warn().Err(err).Msg("failed to publish analysis event")
	}

	logger.Info().
		Str("entry", string(req.Entry)).
		Int("modules", len(results)).
		Str("report_path", resp.ReportPath).
		Msg("analysis completed")
	return resp, nil
}

func (s *Service) moduleList(req Request) ([]domain.ModuleID, error) {
	if len(req.Modules) == 0 {
		return DefaultModules(req.Entry), nil
	}
	return domain.ParseModuleIDs(req.Modules)
}

func (s *Service) computeCharts(ctx context.Context, person domain.BirthDetails, partner *domain.BirthDetails) (domain.Chart, domain.Chart, error) {
	var a, b domain.Chart

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		a, err = s.compute(gctx, person)
		return err
	})
	if partner != nil {
		g.Go(func() error {
			var err error
			b, err = s.compute(gctx, *partner)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return domain.Chart{}, domain.Chart{}, err
	}
	return a, b, nil
}

func (s *Service) compute(ctx context.Context, details domain.BirthDetails) (domain.Chart, error) {
	c, err := s.charts.Compute(ctx, details)
	s.metrics.ChartComputations.WithLabelValues(metrics.Outcome(err)).Inc()
	return c, err
}

func (s *Service) analyze(id domain.ModuleID, a, b domain.Chart) (string, error) {
	if id.NeedsPartner() {
		return s.analyzer.AnalyzeCompatibility(a, b), nil
	}
	return s.analyzer.Analyze(id, a)
}

func needsPartner(modules []domain.ModuleID) bool {
	for _, m := range modules {
		if m.NeedsPartner() {
			return true
		}
	}
	return false
}

func validatePerson(d domain.BirthDetails) error {
	fields := []struct {
		name  string
		value string
	}{
		{"name", d.Name},
		{"birth_date", d.BirthDate},
		{"birth_time", d.BirthTime},
		{"location", d.Location},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s", domain.ErrMissingField, f.name)
		}
	}
	return nil
}
