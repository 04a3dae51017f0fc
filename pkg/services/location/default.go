package location

import (
	"context"
	"fmt"

	"github.com/de-tools/jyotish-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

// Default answers every query with fixed coordinates. It is the last link of a
// non-strict chain, so unknown places still produce a chart.
type Default struct {
	Coordinates domain.Coordinates
}

// ParseDefault reads "lat,lon" in decimal degrees.
func ParseDefault(s string) (Default, error) {
	coords, err := Literal{}.Resolve(context.Background(), s)
	if err != nil {
		return Default{}, fmt.Errorf("invalid default coordinates %q", s)
	}
	return Default{Coordinates: coords}, nil
}

func (d Default) Resolve(ctx context.Context, query string) (domain.Coordinates, error) {
	zerolog.Ctx(ctx).Warn().
		Str("location", query).
		Stringer("coordinates", d.Coordinates).
		Msg("location not recognised, using default coordinates")
	return d.Coordinates, nil
}
