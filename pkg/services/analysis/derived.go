package analysis

import "github.com/de-tools/jyotish-atlas/pkg/models/domain"

// DerivedPoint names a sensitive point computed from other placements.
type DerivedPoint string

const (
	DaraKaraka DerivedPoint = "dara_karaka"
	UpaPada    DerivedPoint = "upa_pada"
)

// DerivedPointCalculator computes the sign of a derived point for a chart.
// Implementations return domain.ErrDerivedPointUnimplemented when they cannot.
type DerivedPointCalculator interface {
	ComputeDerivedPoint(chart domain.Chart, point DerivedPoint) (domain.Sign, error)
}

// UnimplementedDerivedPoints is the default calculator. With it, Marriage carries
// fixed placeholder sentences.
type UnimplementedDerivedPoints struct{}

func (UnimplementedDerivedPoints) ComputeDerivedPoint(domain.Chart, DerivedPoint) (domain.Sign, error) {
	return 0, domain.ErrDerivedPointUnimplemented
}
