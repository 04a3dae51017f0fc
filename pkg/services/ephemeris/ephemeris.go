package ephemeris

import (
	"fmt"
	"math"
	"time"

	"github.com/de-tools/jyotish-atlas/pkg/models/domain"
	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"
)

// Zodiac selects the reference frame longitudes are reported in.
type Zodiac string

const (
	Tropical Zodiac = "tropical"
	Lahiri   Zodiac = "lahiri"
)

func ParseZodiac(s string) (Zodiac, error) {
	switch Zodiac(s) {
	case "", Tropical:
		return Tropical, nil
	case Lahiri:
		return Lahiri, nil
	default:
		return "", fmt.Errorf("unknown zodiac %q", s)
	}
}

// deltaT approximates TT-UT for the current era, in days.
const deltaT = 69.2 / 86400

// Meeus computes ecliptic longitudes with github.com/soniakeys/meeus for the Sun,
// Moon and lunar node and with mean orbital elements for the planets.
type Meeus struct {
	zodiac Zodiac
}

func New(zodiac Zodiac) *Meeus {
	if zodiac == "" {
		zodiac = Tropical
	}
	return &Meeus{zodiac: zodiac}
}

func (m *Meeus) Zodiac() Zodiac {
	return m.zodiac
}

// Positions returns the longitude in degrees [0, 360) of every required chart point
// plus the Midheaven at moment for an observer at coords.
func (m *Meeus) Positions(moment time.Time, coords domain.Coordinates) (map[domain.Point]float64, error) {
	if moment.IsZero() {
		return nil, fmt.Errorf("moment is required")
	}
	if !coords.Valid() {
		return nil, fmt.Errorf("coordinates out of range: %s", coords)
	}
	if math.Abs(coords.Latitude) >= 89.9 {
		return nil, fmt.Errorf("ascendant is undefined at latitude %.4f", coords.Latitude)
	}

	jd := julian.TimeToJD(moment.UTC())
	jde := jd + deltaT
	T := base.J2000Century(jde)

	sun := solar.ApparentLongitude(T).Deg()
	moon, _, _ := moonposition.Position(jde)
	node := moonposition.Node(jde).Deg()

	eps := nutation.MeanObliquity(jde)
	ramc := sidereal.Apparent(jd).Angle() + unit.AngleFromDeg(coords.Longitude)
	asc, mc := houseCusps(ramc, eps, unit.AngleFromDeg(coords.Latitude))

	out := map[domain.Point]float64{
		domain.Sun:       sun,
		domain.Moon:      moon.Deg(),
		domain.Rahu:      node,
		domain.Ketu:      node + 180,
		domain.Ascendant: asc,
		domain.Midheaven: mc,
	}
	for p, el := range planets {
		out[p] = geocentricLongitude(el, T)
	}

	ayanamsa := 0.0
	if m.zodiac == Lahiri {
		ayanamsa = lahiriAyanamsa(T)
	}
	for p, lon := range out {
		out[p] = domain.NormalizeDegrees(lon - ayanamsa)
	}
	return out, nil
}

// houseCusps returns the ascendant and midheaven longitudes in degrees for the
// local sidereal angle ramc, obliquity eps and geographic latitude phi.
func houseCusps(ramc, eps, phi unit.Angle) (asc, mc float64) {
	a := math.Atan2(ramc.Cos(), -(ramc.Sin()*eps.Cos() + phi.Tan()*eps.Sin()))
	m := math.Atan2(ramc.Sin(), ramc.Cos()*eps.Cos())
	return domain.NormalizeDegrees(unit.Angle(a).Deg()), domain.NormalizeDegrees(unit.Angle(m).Deg())
}

// lahiriAyanamsa is the linear Chitrapaksha approximation, 23°51' at J2000.
func lahiriAyanamsa(T float64) float64 {
	return 23.85306 + 1.39697*T
}
