package location

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/de-tools/jyotish-atlas/pkg/models/domain"
)

var literalPattern = regexp.MustCompile(`^\s*([-+]?\d{1,3}(?:\.\d+)?)\s*,\s*([-+]?\d{1,3}(?:\.\d+)?)\s*$`)

// Literal accepts "lat,lon" in decimal degrees, e.g. "24.8607, 67.0011".
type Literal struct{}

func (Literal) Resolve(_ context.Context, query string) (domain.Coordinates, error) {
	m := literalPattern.FindStringSubmatch(query)
	if m == nil {
		return domain.Coordinates{}, domain.ErrLocationNotFound
	}

	lat, _ := strconv.ParseFloat(m[1], 64)
	lon, _ := strconv.ParseFloat(m[2], 64)
	coords := domain.Coordinates{Latitude: lat, Longitude: lon}
	if !coords.Valid() {
		return domain.Coordinates{}, fmt.Errorf("%w: coordinates out of range %q", domain.ErrLocationNotFound, query)
	}
	return coords, nil
}
