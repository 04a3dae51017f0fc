package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/de-tools/jyotish-atlas/pkg/models/domain"
)

const paragraphBreak = "\n\n"

// Analyzer produces module text from charts.
type Analyzer interface {
	Analyze(id domain.ModuleID, chart domain.Chart) (string, error)
	AnalyzeCompatibility(a, b domain.Chart) string
	Profile(chart domain.Chart) (domain.Profile, error)
	WithGender(id domain.ModuleID, g domain.Gender, text string) string
}

// Registry dispatches module ids to their analyzers. It holds no per-request state
// and is safe for concurrent use.
type Registry struct {
	tables  *interpretations
	derived DerivedPointCalculator
}

type Option func(*Registry)

// WithDerivedPoints replaces the default unimplemented calculator.
func WithDerivedPoints(c DerivedPointCalculator) Option {
	return func(r *Registry) {
		if c != nil {
			r.derived = c
		}
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{tables: tables, derived: UnimplementedDerivedPoints{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Attribute returns the chart point a single-chart module reads. Career reports
// Midheaven even though it falls back to the Ascendant.
func Attribute(id domain.ModuleID) (domain.Point, bool) {
	switch id {
	case domain.Personality, domain.BodyType, domain.Health:
		return domain.Ascendant, true
	case domain.Career:
		return domain.Midheaven, true
	case domain.Education:
		return domain.Mercury, true
	case domain.Marriage:
		return domain.Venus, true
	case domain.Sexuality:
		return domain.Mars, true
	case domain.KarmaSoulPath:
		return domain.Rahu, true
	case domain.ForeignTravel:
		return domain.Jupiter, true
	case domain.Spirituality:
		return domain.Ketu, true
	case domain.PsychologicalVulnerability:
		return domain.Moon, true
	case domain.ChronicDisease:
		return domain.Saturn, true
	case domain.Ashtakavarga, domain.DashaTransit, domain.Compatibility:
		return "", false
	default:
		return "", false
	}
}

// Analyze runs a single-chart module. Compatibility needs two charts and returns
// domain.ErrSecondChartRequired here.
func (r *Registry) Analyze(id domain.ModuleID, chart domain.Chart) (string, error) {
	switch id {
	case domain.Personality, domain.BodyType, domain.Health, domain.Education,
		domain.KarmaSoulPath, domain.ForeignTravel, domain.Spirituality,
		domain.PsychologicalVulnerability, domain.ChronicDisease:
		point, _ := Attribute(id)
		return r.signParagraph(id, chart, point)
	case domain.Career:
		return r.career(chart)
	case domain.Marriage:
		return r.marriage(chart)
	case domain.Sexuality:
		return r.sexuality(chart)
	case domain.Ashtakavarga, domain.DashaTransit:
		return r.tables.Fixed[id.Slug()], nil
	case domain.Compatibility:
		return "", fmt.Errorf("%s: %w", id, domain.ErrSecondChartRequired)
	default:
		return "", fmt.Errorf("%w: %v", domain.ErrUnknownModule, id)
	}
}

func (r *Registry) signParagraph(id domain.ModuleID, chart domain.Chart, point domain.Point) (string, error) {
	sign, ok := chart.Sign(point)
	if !ok {
		return "", fmt.Errorf("%w: %s has no %s", domain.ErrIncompleteChart, id, point)
	}
	table := r.tables.Modules[id.Slug()]
	return paragraph(table, withSign(table.Opening, sign), table.sentence(sign), table.Closing), nil
}

func (r *Registry) career(chart domain.Chart) (string, error) {
	table := r.tables.Modules[domain.Career.Slug()]
	if mc, ok := chart.Midheaven(); ok {
		return paragraph(table, withSign(table.Opening, mc), table.sentence(mc), table.Closing), nil
	}
	asc := chart.Ascendant()
	return paragraph(table, withSign(table.OpeningFallback, asc), table.sentence(asc), table.Closing), nil
}

func (r *Registry) sexuality(chart domain.Chart) (string, error) {
	table := r.tables.Modules[domain.Sexuality.Slug()]
	mars, ok := chart.Sign(domain.Mars)
	if !ok {
		return "", fmt.Errorf("%w: %s has no %s", domain.ErrIncompleteChart, domain.Sexuality, domain.Mars)
	}
	closing := strings.ReplaceAll(table.Closing, "{venus}", chart.Venus().String())
	return paragraph(table, withSign(table.Opening, mars), table.sentence(mars), closing), nil
}

func (r *Registry) marriage(chart domain.Chart) (string, error) {
	table := r.tables.Modules[domain.Marriage.Slug()]
	venus := chart.Venus()

	dk, err := r.derivedSentence(chart, DaraKaraka)
	if err != nil {
		return "", err
	}
	ul, err := r.derivedSentence(chart, UpaPada)
	if err != nil {
		return "", err
	}

	body := strings.Join([]string{table.sentence(venus), dk, ul}, " ")
	return paragraph(table, withSign(table.Opening, venus), body, table.Closing), nil
}

func (r *Registry) derivedSentence(chart domain.Chart, point DerivedPoint) (string, error) {
	text := r.tables.Derived[string(point)]
	sign, err := r.derived.ComputeDerivedPoint(chart, point)
	switch {
	case errors.Is(err, domain.ErrDerivedPointUnimplemented):
		return text.Placeholder, nil
	case err != nil:
		return "", fmt.Errorf("%w: derived point %s: %v", domain.ErrChartComputation, point, err)
	case !sign.Valid():
		return "", fmt.Errorf("%w: derived point %s: invalid sign %d", domain.ErrChartComputation, point, int(sign))
	default:
		return withSign(text.Computed, sign), nil
	}
}

func withSign(template string, s domain.Sign) string {
	return strings.ReplaceAll(template, signPlaceholder, s.String())
}

func paragraph(table signTable, opening, body, closing string) string {
	text := opening + " " + body + " " + closing
	if table.Disclaimer != "" {
		text += paragraphBreak + table.Disclaimer
	}
	return text
}
