package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/de-tools/jyotish-atlas/pkg/metrics"
	"github.com/de-tools/jyotish-atlas/pkg/models/domain"
	"github.com/de-tools/jyotish-atlas/pkg/services/analysis"
	"github.com/de-tools/jyotish-atlas/pkg/services/chart"
	"github.com/de-tools/jyotish-atlas/pkg/services/ephemeris"
	"github.com/de-tools/jyotish-atlas/pkg/services/events"
	"github.com/de-tools/jyotish-atlas/pkg/services/location"
	"github.com/de-tools/jyotish-atlas/pkg/services/report"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockComputer struct {
	mock.Mock
}

func (m *mockComputer) Compute(ctx context.Context, details domain.BirthDetails) (domain.Chart, error) {
	args := m.Called(ctx, details)
	return args.Get(0).(domain.Chart), args.Error(1)
}

type mockExporter struct {
	mock.Mock
}

func (m *mockExporter) Export(ctx context.Context, c domain.Chart, results []domain.ModuleResult, format domain.ReportFormat) (report.Exported, error) {
	args := m.Called(ctx, c, results, format)
	return args.Get(0).(report.Exported), args.Error(1)
}

type capturePublisher struct {
	events []events.AnalysisCompleted
	err    error
}

func (p *capturePublisher) Publish(_ context.Context, e events.AnalysisCompleted) error {
	p.events = append(p.events, e)
	return p.err
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func person() domain.BirthDetails {
	return domain.BirthDetails{Name: "Test", BirthDate: "1990-05-15", BirthTime: "10:30", Location: "X", UTCOffset: 5}
}

func completePartner() Partner {
	return Partner{
		Name:      strPtr("Partner"),
		BirthDate: strPtr("1992-08-20"),
		BirthTime: strPtr("06:15"),
		Location:  strPtr("Y"),
		UTCOffset: floatPtr(5.5),
	}
}

func signChart(t *testing.T, name string, base domain.Sign, rahu domain.Sign) domain.Chart {
	t.Helper()
	placements := make(map[domain.Point]domain.Sign, len(domain.RequiredPoints))
	for _, p := range domain.RequiredPoints {
		placements[p] = base
	}
	placements[domain.Rahu] = rahu
	placements[domain.Ketu] = rahu.Opposite()
	c, err := domain.NewChart(domain.ChartMeta{Name: name, Location: "X"}, placements)
	require.NoError(t, err)
	return c
}

func newService(t *testing.T, computer chart.Computer, opts ...Option) *Service {
	t.Helper()
	s, err := New(computer, analysis.NewRegistry(), opts...)
	require.NoError(t, err)
	return s
}

func moduleNames(results []domain.ModuleResult) []domain.ModuleID {
	out := make([]domain.ModuleID, 0, len(results))
	for _, r := range results {
		out = append(out, r.Module)
	}
	return out
}

func TestRun_SingleModule(t *testing.T) {
	computer := &mockComputer{}
	computer.On("Compute", mock.Anything, person()).Return(signChart(t, "Test", domain.Leo, domain.Aries), nil).Once()

	s := newService(t, computer)
	resp, err := s.Run(context.Background(), Request{Person: person(), Modules: []string{"Personality"}, Entry: EntryAnalyze})
	require.NoError(t, err)

	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Test", resp.Name)
	assert.Equal(t, domain.Personality, resp.Results[0].Module)
	assert.Contains(t, resp.Results[0].Analysis, "Leo")
	assert.Empty(t, resp.ReportPath)
	computer.AssertExpectations(t)
}

func TestRun_PreservesRequestedOrder(t *testing.T) {
	computer := &mockComputer{}
	computer.On("Compute", mock.Anything, person()).Return(signChart(t, "Test", domain.Virgo, domain.Aries), nil)

	names := []string{"Spirituality", "Career", "Personality", "Dasha/Transit", "Career"}
	s := newService(t, computer)
	resp, err := s.Run(context.Background(), Request{Person: person(), Modules: names, Entry: EntryModules})
	require.NoError(t, err)

	want := []domain.ModuleID{domain.Spirituality, domain.Career, domain.Personality, domain.DashaTransit, domain.Career}
	if diff := cmp.Diff(want, moduleNames(resp.Results)); diff != "" {
		t.Errorf("module order mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_DefaultModules(t *testing.T) {
	tests := []struct {
		name    string
		entry   Entry
		partner Partner
		want    []domain.ModuleID
	}{
		{"aggregate includes compatibility", EntryAnalyze, completePartner(), domain.AllModules},
		{"module group excludes compatibility", EntryModules, Partner{}, domain.SingleChartModules()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			computer := &mockComputer{}
			computer.On("Compute", mock.Anything, mock.Anything).Return(signChart(t, "Test", domain.Pisces, domain.Gemini), nil)

			s := newService(t, computer)
			resp, err := s.Run(context.Background(), Request{Person: person(), Partner: tt.partner, Entry: tt.entry})
			require.NoError(t, err)

			if diff := cmp.Diff(tt.want, moduleNames(resp.Results)); diff != "" {
				t.Errorf("default modules mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRun_AggregateDefaultNeedsPartner(t *testing.T) {
	computer := &mockComputer{}
	s := newService(t, computer)

	_, err := s.Run(context.Background(), Request{Person: person(), Entry: EntryAnalyze})
	assert.ErrorIs(t, err, domain.ErrMissingPartnerDetails)
	computer.AssertNotCalled(t, "Compute", mock.Anything, mock.Anything)
}

func TestRun_Compatibility(t *testing.T) {
	partner, err := completePartner().Details()
	require.NoError(t, err)

	computer := &mockComputer{}
	computer.On("Compute", mock.Anything, person()).Return(signChart(t, "Test", domain.Aries, domain.Taurus), nil).Once()
	computer.On("Compute", mock.Anything, partner).Return(signChart(t, "Partner", domain.Leo, domain.Scorpio), nil).Once()

	s := newService(t, computer)
	resp, err := s.Run(context.Background(), Request{
		Person:  person(),
		Partner: completePartner(),
		Modules: []string{"Compatibility"},
		Entry:   EntryAnalyze,
	})
	require.NoError(t, err)

	require.Len(t, resp.Results, 1)
	assert.Equal(t, domain.Compatibility, resp.Results[0].Module)
	assert.Contains(t, resp.Results[0].Analysis, "karmic lessons")
	computer.AssertExpectations(t)
}

func TestRun_IncompletePartnerRejectedBeforeCompute(t *testing.T) {
	cases := []struct {
		field string
		mod   func(*Partner)
	}{
		{"second_name", func(p *Partner) { p.Name = nil }},
		{"second_birth_date", func(p *Partner) { p.BirthDate = nil }},
		{"second_birth_time", func(p *Partner) { p.BirthTime = strPtr("  ") }},
		{"second_location", func(p *Partner) { p.Location = nil }},
		{"second_utc_offset", func(p *Partner) { p.UTCOffset = nil }},
	}
	for _, tt := range cases {
		t.Run(tt.field, func(t *testing.T) {
			partner := completePartner()
			tt.mod(&partner)

			computer := &mockComputer{}
			s := newService(t, computer)
			_, err := s.Run(context.Background(), Request{
				Person:  person(),
				Partner: partner,
				Modules: []string{"Personality", "Compatibility"},
				Entry:   EntryAnalyze,
			})
			require.ErrorIs(t, err, domain.ErrMissingPartnerDetails)
			assert.Contains(t, err.Error(), tt.field)
			assert.True(t, domain.IsValidation(err))
			computer.AssertNotCalled(t, "Compute", mock.Anything, mock.Anything)
		})
	}
}

func TestRun_ValidationBeforeCompute(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{"unknown module", Request{Person: person(), Modules: []string{"Personality", "personality"}}, domain.ErrUnknownModule},
		{"missing name", Request{Person: domain.BirthDetails{BirthDate: "1990-05-15", BirthTime: "10:30", Location: "X"}}, domain.ErrMissingField},
		{"missing location", Request{Person: domain.BirthDetails{Name: "Test", BirthDate: "1990-05-15", BirthTime: "10:30"}}, domain.ErrMissingField},
		{"pdf without exporter", Request{Person: person(), Modules: []string{"Health"}, Format: domain.FormatPDF}, domain.ErrExport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			computer := &mockComputer{}
			s := newService(t, computer)

			_, err := s.Run(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			computer.AssertNotCalled(t, "Compute", mock.Anything, mock.Anything)
		})
	}
}

func TestRun_ChartFailureAbortsRequest(t *testing.T) {
	computer := &mockComputer{}
	computer.On("Compute", mock.Anything, person()).Return(domain.Chart{}, domain.ErrChartComputation)

	m := metrics.New()
	s := newService(t, computer, WithMetrics(m))
	_, err := s.Run(context.Background(), Request{Person: person(), Modules: []string{"Career"}, Entry: EntryModules})
	assert.ErrorIs(t, err, domain.ErrChartComputation)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChartComputations.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Analyses.WithLabelValues("modules", "error")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ModuleRuns.WithLabelValues("career")))
}

func TestRun_ExportsReport(t *testing.T) {
	c := signChart(t, "Test", domain.Capricorn, domain.Aries)
	computer := &mockComputer{}
	computer.On("Compute", mock.Anything, person()).Return(c, nil)

	exporter := &mockExporter{}
	exporter.On("Export", mock.Anything, c, mock.AnythingOfType("[]domain.ModuleResult"), domain.FormatDocx).
		Return(report.Exported{ID: "r1", Path: "reports/test_20240101000000.docx", Format: domain.FormatDocx}, nil)

	publisher := &capturePublisher{}
	m := metrics.New()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newService(t, computer, WithExporter(exporter), WithPublisher(publisher), WithMetrics(m), WithClock(func() time.Time { return now }))

	resp, err := s.Run(context.Background(), Request{Person: person(), Modules: []string{"Health", "Education"}, Entry: EntryAnalyze, Format: domain.FormatDocx})
	require.NoError(t, err)
	assert.Equal(t, "reports/test_20240101000000.docx", resp.ReportPath)

	require.Len(t, publisher.events, 1)
	ev := publisher.events[0]
	assert.Equal(t, "Test", ev.Name)
	assert.Equal(t, []domain.ModuleID{domain.Health, domain.Education}, ev.Modules)
	assert.Equal(t, resp.ReportPath, ev.ReportPath)
	assert.Equal(t, now, ev.CompletedAt)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Exports.WithLabelValues("docx", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ModuleRuns.WithLabelValues("health")))
	exporter.AssertExpectations(t)
}

func TestRun_ExportFailure(t *testing.T) {
	computer := &mockComputer{}
	computer.On("Compute", mock.Anything, person()).Return(signChart(t, "Test", domain.Aries, domain.Aries), nil)
	exporter := &mockExporter{}
	exporter.On("Export", mock.Anything, mock.Anything, mock.Anything, domain.FormatPDF).
		Return(report.Exported{}, domain.ErrExport)

	s := newService(t, computer, WithExporter(exporter))
	_, err := s.Run(context.Background(), Request{Person: person(), Modules: []string{"Health"}, Format: domain.FormatPDF})
	assert.ErrorIs(t, err, domain.ErrExport)
}

func TestRun_PublishFailureIsNotFatal(t *testing.T) {
	computer := &mockComputer{}
	computer.On("Compute", mock.Anything, person()).Return(signChart(t, "Test", domain.Aries, domain.Aries), nil)

	publisher := &capturePublisher{err: errors.New("nats down")}
	s := newService(t, computer, WithPublisher(publisher))
	_, err := s.Run(context.Background(), Request{Person: person(), Modules: []string{"Ashtakavarga"}})
	require.NoError(t, err)
	assert.Len(t, publisher.events, 1)
}

func TestRunModule(t *testing.T) {
	computer := &mockComputer{}
	computer.On("Compute", mock.Anything, person()).Return(signChart(t, "Test", domain.Gemini, domain.Aries), nil)

	s := newService(t, computer)
	res, err := s.RunModule(context.Background(), domain.Education, Request{Person: person(), Modules: []string{"ignored"}, Format: domain.FormatPDF})
	require.NoError(t, err)
	assert.Equal(t, domain.Education, res.Module)
	assert.Contains(t, res.Analysis, "Gemini")

	_, err = s.RunModule(context.Background(), domain.Compatibility, Request{Person: person()})
	assert.ErrorIs(t, err, domain.ErrMissingPartnerDetails)
}

func TestRun_GenderContext(t *testing.T) {
	computer := &mockComputer{}
	computer.On("Compute", mock.Anything, person()).Return(signChart(t, "Test", domain.Leo, domain.Aries), nil)

	s := newService(t, computer)
	resp, err := s.Run(context.Background(), Request{
		Person:  person(),
		Modules: []string{"Personality", "Ashtakavarga"},
		Gender:  domain.GenderNonBinary,
	})
	require.NoError(t, err)

	require.Len(t, resp.Results, 2)
	assert.Contains(t, resp.Results[0].Analysis, "\n\nGender-Specific Insights:\n")
	assert.NotContains(t, resp.Results[1].Analysis, "Gender-Specific Insights")
}

func TestProfile(t *testing.T) {
	computer := &mockComputer{}
	c := signChart(t, "Test", domain.Libra, domain.Aries)
	computer.On("Compute", mock.Anything, person()).Return(c, nil).Once()

	m := metrics.New()
	s := newService(t, computer, WithMetrics(m))
	p, err := s.Profile(context.Background(), person())
	require.NoError(t, err)

	assert.Equal(t, "Test", p.Name)
	assert.Contains(t, p.Message, "Venus in Libra, you seduce with a charming and diplomatic charm.")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Analyses.WithLabelValues("profile", "ok")))
	computer.AssertExpectations(t)
}

func TestProfile_Errors(t *testing.T) {
	computer := &mockComputer{}
	s := newService(t, computer)

	noName := person()
	noName.Name = " "
	_, err := s.Profile(context.Background(), noName)
	assert.ErrorIs(t, err, domain.ErrMissingField)
	computer.AssertNotCalled(t, "Compute", mock.Anything, mock.Anything)

	computer.On("Compute", mock.Anything, person()).Return(domain.Chart{}, domain.ErrLocationNotFound)
	_, err = s.Profile(context.Background(), person())
	assert.ErrorIs(t, err, domain.ErrLocationNotFound)
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(nil, analysis.NewRegistry())
	assert.Error(t, err)
	_, err = New(&mockComputer{}, nil)
	assert.Error(t, err)
}

func TestRun_EndToEnd(t *testing.T) {
	gazetteer, err := location.NewGazetteer("")
	require.NoError(t, err)
	computer, err := chart.NewAdapter(ephemeris.New(ephemeris.Tropical), location.Chain{location.Literal{}, gazetteer})
	require.NoError(t, err)

	exporter := report.NewExporter(report.Settings{OutputDir: t.TempDir(), RichFormats: true})
	s := newService(t, computer, WithExporter(exporter))

	req := Request{
		Person:  domain.BirthDetails{Name: "Test", BirthDate: "1990-05-15", BirthTime: "10:30", Location: "Karachi", UTCOffset: 5},
		Partner: completePartner(),
		Entry:   EntryAnalyze,
		Format:  domain.FormatDocx,
	}
	req.Partner.Location = strPtr("24.86,67.00")

	resp, err := s.Run(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Results, len(domain.AllModules))
	for _, r := range resp.Results {
		assert.NotEmpty(t, strings.TrimSpace(r.Analysis), r.Module.String())
	}

	text, err := report.ReadBack(resp.ReportPath)
	require.NoError(t, err)
	assert.Contains(t, text, "Astrological Report for Test")
	assert.Contains(t, text, "Karma & Soul Path")
}
