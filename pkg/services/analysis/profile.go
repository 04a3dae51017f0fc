package analysis

import (
	"fmt"
	"strings"

	"github.com/de-tools/jyotish-atlas/pkg/models/domain"
)

// Profile builds the attraction profile from the Venus, Mars and Moon signs.
func (r *Registry) Profile(chart domain.Chart) (domain.Profile, error) {
	p := r.tables.Profile
	traits := []struct {
		point domain.Point
		trait profileTrait
	}{
		{domain.Venus, p.Venus},
		{domain.Mars, p.Mars},
		{domain.Moon, p.Moon},
	}

	parts := make([]string, 0, len(traits)+1)
	for _, t := range traits {
		sign, ok := chart.Sign(t.point)
		if !ok {
			return domain.Profile{}, fmt.Errorf("%w: profile has no %s", domain.ErrIncompleteChart, t.point)
		}
		sentence := strings.NewReplacer(
			namePlaceholder, chart.Name(),
			signPlaceholder, sign.String(),
			stylePlaceholder, t.trait.style(sign),
		).Replace(t.trait.Template)
		parts = append(parts, sentence)
	}
	parts = append(parts, p.Closing)

	return domain.Profile{Name: chart.Name(), Message: strings.Join(parts, " ")}, nil
}

// WithGender appends the gender-specific context for a module. Text is returned
// unchanged when the gender is not tailored or the module has no context.
func (r *Registry) WithGender(id domain.ModuleID, g domain.Gender, text string) string {
	if !g.Tailored() {
		return text
	}
	extra, ok := r.tables.Gender.Modules[id.Slug()][g]
	if !ok {
		return text
	}
	return text + paragraphBreak + r.tables.Gender.Heading + "\n" + extra
}
