package domain

import (
	"fmt"
	"math"
)

// Sign is one of the twelve zodiac signs, Aries first.
type Sign int

const (
	Aries Sign = iota
	Taurus
	Gemini
	Cancer
	Leo
	Virgo
	Libra
	Scorpio
	Sagittarius
	Capricorn
	Aquarius
	Pisces
)

var signNames = [...]string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

// Signs lists the zodiac in order.
var Signs = []Sign{
	Aries, Taurus, Gemini, Cancer, Leo, Virgo,
	Libra, Scorpio, Sagittarius, Capricorn, Aquarius, Pisces,
}

func (s Sign) Valid() bool {
	return s >= Aries && s <= Pisces
}

func (s Sign) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Sign(%d)", int(s))
	}
	return signNames[s]
}

// ParseSign accepts the canonical sign name, e.g. "Scorpio".
func ParseSign(name string) (Sign, error) {
	for i, n := range signNames {
		if n == name {
			return Sign(i), nil
		}
	}
	return 0, fmt.Errorf("unknown zodiac sign %q", name)
}

// SignFromLongitude maps an ecliptic longitude in degrees to its 30° sign.
func SignFromLongitude(deg float64) Sign {
	deg = NormalizeDegrees(deg)
	return Sign(int(deg/30) % 12)
}

// Opposite returns the sign 180° away.
func (s Sign) Opposite() Sign {
	return Sign((int(s) + 6) % 12)
}

// NormalizeDegrees folds an angle into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// Element is the fourfold classification used for compatibility.
type Element string

const (
	Fire  Element = "Fire"
	Earth Element = "Earth"
	Air   Element = "Air"
	Water Element = "Water"
)

var Elements = []Element{Fire, Earth, Air, Water}

// Element returns the sign's element, or "" for an invalid sign.
func (s Sign) Element() Element {
	if !s.Valid() {
		return ""
	}
	switch s % 4 {
	case 0:
		return Fire
	case 1:
		return Earth
	case 2:
		return Air
	default:
		return Water
	}
}
