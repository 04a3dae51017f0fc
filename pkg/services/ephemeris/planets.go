package ephemeris

import (
	"math"

	"github.com/de-tools/jyotish-atlas/pkg/models/domain"
)

// elements are Keplerian elements referred to the J2000 ecliptic and their rates per
// Julian century (Standish, "Keplerian Elements for Approximate Positions of the
// Major Planets", valid 1800-2050). Angles in degrees, a in AU.
type elements struct {
	a, e, i, l, peri, node       float64
	da, de, di, dl, dperi, dnode float64
}

var earthMoonBarycenter = elements{
	1.00000261, 0.01671123, -0.00001531, 100.46457166, 102.93768193, 0.0,
	0.00000562, -0.00004392, -0.01294668, 35999.37244981, 0.32327364, 0.0,
}

var planets = map[domain.Point]elements{
	domain.Mercury: {
		0.38709927, 0.20563593, 7.00497902, 252.25032350, 77.45779628, 48.33076593,
		0.00000037, 0.00001906, -0.00594749, 149472.67411175, 0.16047689, -0.12534081,
	},
	domain.Venus: {
		0.72333566, 0.00677672, 3.39467605, 181.97909950, 131.60246718, 76.67984255,
		0.00000390, -0.00004107, -0.00078890, 58517.81538729, 0.00268329, -0.27769418,
	},
	domain.Mars: {
		1.52371034, 0.09339410, 1.84969142, -4.55343205, -23.94362959, 49.55953891,
		0.00001847, 0.00007882, -0.00813131, 19140.30268499, 0.44441088, -0.29257343,
	},
	domain.Jupiter: {
		5.20288700, 0.04838624, 1.30439695, 34.39644051, 14.72847983, 100.47390909,
		-0.00011607, -0.00013253, -0.00183714, 3034.74612775, 0.21252668, 0.20469106,
	},
	domain.Saturn: {
		9.53667594, 0.05386179, 2.48599187, 49.95424423, 92.59887831, 113.66242448,
		-0.00125060, -0.00050991, 0.00193609, 1222.49362201, -0.41897216, -0.28867794,
	},
}

// generalPrecession is the accumulated precession in longitude, degrees per century.
const generalPrecession = 1.3969713

const rad = math.Pi / 180

// heliocentric returns J2000 ecliptic rectangular coordinates in AU at T centuries.
func heliocentric(el elements, T float64) (x, y, z float64) {
	a := el.a + el.da*T
	e := el.e + el.de*T
	inc := (el.i + el.di*T) * rad
	l := el.l + el.dl*T
	peri := el.peri + el.dperi*T
	node := (el.node + el.dnode*T) * rad

	meanAnomaly := domain.NormalizeDegrees(l-peri) * rad
	argPeri := peri*rad - node

	E := solveKepler(meanAnomaly, e)
	xv := a * (math.Cos(E) - e)
	yv := a * math.Sqrt(1-e*e) * math.Sin(E)
	v := math.Atan2(yv, xv)
	r := math.Hypot(xv, yv)

	u := v + argPeri
	x = r * (math.Cos(node)*math.Cos(u) - math.Sin(node)*math.Sin(u)*math.Cos(inc))
	y = r * (math.Sin(node)*math.Cos(u) + math.Cos(node)*math.Sin(u)*math.Cos(inc))
	z = r * math.Sin(u) * math.Sin(inc)
	return x, y, z
}

// solveKepler solves E - e sin E = M by Newton iteration.
func solveKepler(M, e float64) float64 {
	E := M + e*math.Sin(M)
	for range 30 {
		dE := (E - e*math.Sin(E) - M) / (1 - e*math.Cos(E))
		E -= dE
		if math.Abs(dE) < 1e-12 {
			break
		}
	}
	return E
}

// geocentricLongitude returns the geocentric ecliptic longitude of date, degrees.
func geocentricLongitude(el elements, T float64) float64 {
	px, py, _ := heliocentric(el, T)
	ex, ey, _ := heliocentric(earthMoonBarycenter, T)
	lon := math.Atan2(py-ey, px-ex) / rad
	return domain.NormalizeDegrees(lon + generalPrecession*T)
}
