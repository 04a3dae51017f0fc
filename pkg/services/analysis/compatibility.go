package analysis

import (
	"strings"

	"github.com/de-tools/jyotish-atlas/pkg/models/domain"
)

// Level grades how well two elements combine.
type Level string

const (
	High       Level = "high"
	MediumHigh Level = "medium-high"
	Low        Level = "low"
)

// ElementCompatibility is symmetric: equal elements are High, Fire with Air and
// Earth with Water are MediumHigh, anything else is Low.
func ElementCompatibility(a, b domain.Element) Level {
	switch {
	case a == b:
		return High
	case complementary(a, b) || complementary(b, a):
		return MediumHigh
	default:
		return Low
	}
}

func complementary(a, b domain.Element) bool {
	return (a == domain.Fire && b == domain.Air) || (a == domain.Earth && b == domain.Water)
}

// KarmicTie holds when either chart's Rahu sits in the other chart's Ketu sign.
func KarmicTie(a, b domain.Chart) bool {
	return a.Rahu() == b.Ketu() || b.Rahu() == a.Ketu()
}

// AnalyzeCompatibility compares two charts. It is total: every pair of valid
// charts produces text.
func (r *Registry) AnalyzeCompatibility(a, b domain.Chart) string {
	text := r.tables.Compatibility

	asc := ElementCompatibility(a.Ascendant().Element(), b.Ascendant().Element())
	moon := ElementCompatibility(a.Moon().Element(), b.Moon().Element())
	venus := ElementCompatibility(a.Venus().Element(), b.Venus().Element())

	karmic := text.NoKarmicTie
	if KarmicTie(a, b) {
		karmic = text.KarmicTie
	}

	parts := []string{
		strings.ReplaceAll(text.Ascendant, levelPlaceholder, text.AscendantLevels[asc]),
		strings.ReplaceAll(text.Moon, levelPlaceholder, spoken(moon)),
		strings.ReplaceAll(text.Venus, levelPlaceholder, spoken(venus)),
		karmic,
		text.Guidance,
		paragraphBreak + text.Disclaimer,
	}
	return strings.Join(parts, " ")
}

// spoken renders "medium-high" as "medium high".
func spoken(l Level) string {
	return strings.ReplaceAll(string(l), "-", " ")
}
