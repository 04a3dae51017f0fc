package chart

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/de-tools/jyotish-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

// Ephemeris reports ecliptic longitudes in degrees for a UTC moment and place.
type Ephemeris interface {
	Positions(moment time.Time, coords domain.Coordinates) (map[domain.Point]float64, error)
}

// LocationResolver turns location text into coordinates.
type LocationResolver interface {
	Resolve(ctx context.Context, query string) (domain.Coordinates, error)
}

// Computer builds charts from raw birth details.
type Computer interface {
	Compute(ctx context.Context, details domain.BirthDetails) (domain.Chart, error)
}

type adapter struct {
	ephemeris Ephemeris
	resolver  LocationResolver
}

func NewAdapter(ephemeris Ephemeris, resolver LocationResolver) (Computer, error) {
	if ephemeris == nil {
		return nil, fmt.Errorf("ephemeris is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("location resolver is required")
	}
	return &adapter{ephemeris: ephemeris, resolver: resolver}, nil
}

var timeLayouts = []string{"15:04:05", "15:04"}

// ParseBirthMoment combines a YYYY-MM-DD date and a 24h HH:MM[:SS] time into a
// wall-clock moment in a fixed zone offset hours east of UTC.
func ParseBirthMoment(date, clock string, utcOffset float64) (time.Time, error) {
	d, err := time.Parse("2006-01-02", strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid birth_date %q: %w", date, err)
	}

	var tod time.Time
	clock = strings.TrimSpace(clock)
	for _, layout := range timeLayouts {
		if tod, err = time.Parse(layout, clock); err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid birth_time %q: %w", clock, err)
	}

	if math.IsNaN(utcOffset) || utcOffset < -14 || utcOffset > 14 {
		return time.Time{}, fmt.Errorf("invalid utc_offset %v", utcOffset)
	}
	seconds := int(math.Round(utcOffset * 3600))
	zone := time.FixedZone(fmt.Sprintf("UTC%+.1f", utcOffset), seconds)

	return time.Date(d.Year(), d.Month(), d.Day(), tod.Hour(), tod.Minute(), tod.Second(), 0, zone), nil
}

func (a *adapter) Compute(ctx context.Context, details domain.BirthDetails) (domain.Chart, error) {
	logger := zerolog.Ctx(ctx)

	moment, err := ParseBirthMoment(details.BirthDate, details.BirthTime, details.UTCOffset)
	if err != nil {
		return domain.Chart{}, fmt.Errorf("%w: %v", domain.ErrChartComputation, err)
	}

	coords, err := a.resolver.Resolve(ctx, details.Location)
	if err != nil {
		if errors.Is(err, domain.ErrLocationNotFound) || errors.Is(err, domain.ErrUpstreamGeocoder) {
			return domain.Chart{}, err
		}
		return domain.Chart{}, fmt.Errorf("%w: resolve location: %v", domain.ErrChartComputation, err)
	}

	longitudes, err := a.ephemeris.Positions(moment.UTC(), coords)
	if err != nil {
		return domain.Chart{}, fmt.Errorf("%w: %v", domain.ErrChartComputation, err)
	}

	placements := make(map[domain.Point]domain.Sign, len(longitudes))
	for _, p := range domain.RequiredPoints {
		lon, ok := longitudes[p]
		if !ok || math.IsNaN(lon) || math.IsInf(lon, 0) {
			return domain.Chart{}, fmt.Errorf("%w: no longitude for %s", domain.ErrChartComputation, p)
		}
		placements[p] = domain.SignFromLongitude(lon)
	}
	if lon, ok := longitudes[domain.Midheaven]; ok && !math.IsNaN(lon) && !math.IsInf(lon, 0) {
		placements[domain.Midheaven] = domain.SignFromLongitude(lon)
	}

	c, err := domain.NewChart(domain.ChartMeta{
		Name:        details.Name,
		Birth:       moment,
		UTCOffset:   details.UTCOffset,
		Location:    details.Location,
		Coordinates: coords,
	}, placements)
	if err != nil {
		return domain.Chart{}, fmt.Errorf("%w: %v", domain.ErrChartComputation, err)
	}

	logger.Debug().
		Str("name", details.Name).
		Time("birth_utc", moment.UTC()).
		Stringer("ascendant", c.Ascendant()).
		Stringer("moon", c.Moon()).
		Msg("chart computed")
	return c, nil
}
