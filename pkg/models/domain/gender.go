package domain

import (
	"fmt"
	"strings"
)

// Gender optionally tailors module text. The zero value adds nothing.
type Gender string

const (
	GenderUnspecified    Gender = ""
	GenderMale           Gender = "male"
	GenderFemale         Gender = "female"
	GenderNonBinary      Gender = "non_binary"
	GenderPreferNotToSay Gender = "prefer_not_to_say"
)

// ParseGender is case-insensitive and treats an empty value as unspecified.
func ParseGender(s string) (Gender, error) {
	switch g := Gender(strings.ToLower(strings.TrimSpace(s))); g {
	case GenderUnspecified, GenderMale, GenderFemale, GenderNonBinary, GenderPreferNotToSay:
		return g, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedGender, s)
	}
}

// Tailored reports whether gender-specific text applies.
func (g Gender) Tailored() bool {
	return g != GenderUnspecified && g != GenderPreferNotToSay
}
