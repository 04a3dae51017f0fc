package domain

import (
	"fmt"
	"time"
)

// Point identifies a chart point whose sign the analyzers read.
type Point string

const (
	Sun       Point = "Sun"
	Moon      Point = "Moon"
	Mercury   Point = "Mercury"
	Venus     Point = "Venus"
	Mars      Point = "Mars"
	Jupiter   Point = "Jupiter"
	Saturn    Point = "Saturn"
	Ascendant Point = "Ascendant"
	Rahu      Point = "Rahu"
	Ketu      Point = "Ketu"

	// Midheaven is optional; Career falls back to the Ascendant without it.
	Midheaven Point = "Midheaven"
)

// RequiredPoints must all be present in every Chart.
var RequiredPoints = []Point{Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn, Ascendant, Rahu, Ketu}

// Coordinates is a geographic position in decimal degrees, east and north positive.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Latitude, c.Longitude)
}

// BirthDetails is the raw, unparsed input for one person.
type BirthDetails struct {
	Name      string
	BirthDate string // YYYY-MM-DD
	BirthTime string // HH:MM or HH:MM:SS, 24h
	Location  string
	UTCOffset float64 // hours, fractional allowed
}

// ChartMeta describes whose chart it is and where/when it was cast.
type ChartMeta struct {
	Name        string
	Birth       time.Time // local wall clock in a fixed zone of UTCOffset
	UTCOffset   float64
	Location    string
	Coordinates Coordinates
}

// Chart is an immutable set of sign placements. Build it with NewChart.
type Chart struct {
	meta       ChartMeta
	placements map[Point]Sign
	midheaven  *Sign
}

// NewChart validates that every required point carries a valid sign. A Midheaven
// entry in placements is kept as the optional Midheaven.
func NewChart(meta ChartMeta, placements map[Point]Sign) (Chart, error) {
	own := make(map[Point]Sign, len(RequiredPoints))
	for _, p := range RequiredPoints {
		s, ok := placements[p]
		if !ok {
			return Chart{}, fmt.Errorf("%w: missing %s", ErrIncompleteChart, p)
		}
		if !s.Valid() {
			return Chart{}, fmt.Errorf("%w: invalid sign for %s", ErrIncompleteChart, p)
		}
		own[p] = s
	}

	c := Chart{meta: meta, placements: own}
	if mc, ok := placements[Midheaven]; ok && mc.Valid() {
		c.midheaven = &mc
	}
	return c, nil
}

func (c Chart) Name() string             { return c.meta.Name }
func (c Chart) Meta() ChartMeta          { return c.meta }
func (c Chart) Birth() time.Time         { return c.meta.Birth }
func (c Chart) UTCOffset() float64       { return c.meta.UTCOffset }
func (c Chart) Location() string         { return c.meta.Location }
func (c Chart) Coordinates() Coordinates { return c.meta.Coordinates }

// Sign returns the placement of p; ok is false for points the chart does not carry.
func (c Chart) Sign(p Point) (Sign, bool) {
	if p == Midheaven {
		return c.Midheaven()
	}
	s, ok := c.placements[p]
	return s, ok
}

func (c Chart) Ascendant() Sign { return c.placements[Ascendant] }
func (c Chart) Moon() Sign      { return c.placements[Moon] }
func (c Chart) Venus() Sign     { return c.placements[Venus] }
func (c Chart) Rahu() Sign      { return c.placements[Rahu] }
func (c Chart) Ketu() Sign      { return c.placements[Ketu] }

// Midheaven reports the Midheaven sign when the chart was cast with one.
func (c Chart) Midheaven() (Sign, bool) {
	if c.midheaven == nil {
		return 0, false
	}
	return *c.midheaven, true
}

// Placements returns a copy of the required placements.
func (c Chart) Placements() map[Point]Sign {
	out := make(map[Point]Sign, len(c.placements)+1)
	for p, s := range c.placements {
		out[p] = s
	}
	if c.midheaven != nil {
		out[Midheaven] = *c.midheaven
	}
	return out
}
