package analysis

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/de-tools/jyotish-atlas/pkg/models/domain"
	"gopkg.in/yaml.v3"
)

//go:embed data/interpretations.yaml
var interpretationsYAML []byte

type signTable struct {
	Opening         string            `yaml:"opening"`
	OpeningFallback string            `yaml:"opening_fallback"`
	Fallback        string            `yaml:"fallback"`
	Closing         string            `yaml:"closing"`
	Disclaimer      string            `yaml:"disclaimer"`
	Signs           map[string]string `yaml:"signs"`
}

// sentence returns the table entry for s, or the fallback sentence.
func (t signTable) sentence(s domain.Sign) string {
	if text, ok := t.Signs[s.String()]; ok {
		return text
	}
	return t.Fallback
}

type derivedText struct {
	Placeholder string `yaml:"placeholder"`
	Computed    string `yaml:"computed"`
}

type compatibilityText struct {
	Ascendant       string           `yaml:"ascendant"`
	AscendantLevels map[Level]string `yaml:"ascendant_levels"`
	Moon            string           `yaml:"moon"`
	Venus           string           `yaml:"venus"`
	KarmicTie       string           `yaml:"karmic_tie"`
	NoKarmicTie     string           `yaml:"no_karmic_tie"`
	Guidance        string           `yaml:"guidance"`
	Disclaimer      string           `yaml:"disclaimer"`
}

// profileTrait describes one planet of the attraction profile.
type profileTrait struct {
	Template string            `yaml:"template"`
	Default  string            `yaml:"default"`
	Styles   map[string]string `yaml:"styles"`
}

func (t profileTrait) style(s domain.Sign) string {
	if text, ok := t.Styles[s.String()]; ok {
		return text
	}
	return t.Default
}

type profileText struct {
	Venus   profileTrait `yaml:"venus"`
	Mars    profileTrait `yaml:"mars"`
	Moon    profileTrait `yaml:"moon"`
	Closing string       `yaml:"closing"`
}

type genderText struct {
	Heading string                              `yaml:"heading"`
	Modules map[string]map[domain.Gender]string `yaml:"modules"`
}

type interpretations struct {
	Modules       map[string]signTable   `yaml:"modules"`
	Fixed         map[string]string      `yaml:"fixed"`
	Derived       map[string]derivedText `yaml:"derived"`
	Compatibility compatibilityText      `yaml:"compatibility"`
	Profile       profileText            `yaml:"profile"`
	Gender        genderText             `yaml:"gender"`
}

// tables is decoded once and never written afterwards.
var tables = mustLoadInterpretations(interpretationsYAML)

func mustLoadInterpretations(raw []byte) *interpretations {
	t, err := loadInterpretations(raw)
	if err != nil {
		panic(fmt.Sprintf("analysis: embedded interpretations: %v", err))
	}
	return t
}

func loadInterpretations(raw []byte) (*interpretations, error) {
	var t interpretations
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("failed to decode: %w", err)
	}

	for _, id := range domain.AllModules {
		switch id {
		case domain.Ashtakavarga, domain.DashaTransit:
			if strings.TrimSpace(t.Fixed[id.Slug()]) == "" {
				return nil, fmt.Errorf("module %s: missing fixed text", id)
			}
		case domain.Compatibility:
			if err := t.Compatibility.validate(); err != nil {
				return nil, err
			}
		default:
			table, ok := t.Modules[id.Slug()]
			if !ok {
				return nil, fmt.Errorf("module %s: missing table", id)
			}
			if err := table.validate(); err != nil {
				return nil, fmt.Errorf("module %s: %w", id, err)
			}
		}
	}

	for _, p := range []DerivedPoint{DaraKaraka, UpaPada} {
		d, ok := t.Derived[string(p)]
		if !ok || d.Placeholder == "" || !strings.Contains(d.Computed, signPlaceholder) {
			return nil, fmt.Errorf("derived point %s: incomplete text", p)
		}
	}

	if err := t.Profile.validate(); err != nil {
		return nil, err
	}
	if err := t.Gender.validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

const (
	signPlaceholder  = "{sign}"
	levelPlaceholder = "{level}"
	namePlaceholder  = "{name}"
	stylePlaceholder = "{style}"
)

func (t signTable) validate() error {
	if !strings.Contains(t.Opening, signPlaceholder) {
		return fmt.Errorf("opening lacks %s", signPlaceholder)
	}
	if t.Fallback == "" || t.Closing == "" {
		return fmt.Errorf("fallback and closing are required")
	}
	for _, s := range domain.Signs {
		if strings.TrimSpace(t.Signs[s.String()]) == "" {
			return fmt.Errorf("no sentence for %s", s)
		}
	}
	if len(t.Signs) != len(domain.Signs) {
		return fmt.Errorf("expected %d signs, found %d", len(domain.Signs), len(t.Signs))
	}
	return nil
}

func (c compatibilityText) validate() error {
	for _, l := range []Level{High, MediumHigh, Low} {
		if c.AscendantLevels[l] == "" {
			return fmt.Errorf("compatibility: no ascendant text for level %s", l)
		}
	}
	if !strings.Contains(c.Ascendant, levelPlaceholder) ||
		!strings.Contains(c.Moon, levelPlaceholder) ||
		!strings.Contains(c.Venus, levelPlaceholder) {
		return fmt.Errorf("compatibility: sentence templates lack %s", levelPlaceholder)
	}
	if c.KarmicTie == "" || c.NoKarmicTie == "" || c.Guidance == "" || c.Disclaimer == "" {
		return fmt.Errorf("compatibility: fixed sentences are required")
	}
	return nil
}

func (p profileText) validate() error {
	traits := []struct {
		name  string
		trait profileTrait
	}{
		{"venus", p.Venus},
		{"mars", p.Mars},
		{"moon", p.Moon},
	}
	for _, tr := range traits {
		if !strings.Contains(tr.trait.Template, signPlaceholder) || !strings.Contains(tr.trait.Template, stylePlaceholder) {
			return fmt.Errorf("profile %s: template lacks %s or %s", tr.name, signPlaceholder, stylePlaceholder)
		}
		if tr.trait.Default == "" {
			return fmt.Errorf("profile %s: default style is required", tr.name)
		}
		for name := range tr.trait.Styles {
			if _, err := domain.ParseSign(name); err != nil {
				return fmt.Errorf("profile %s: %w", tr.name, err)
			}
		}
	}
	if !strings.Contains(p.Venus.Template, namePlaceholder) {
		return fmt.Errorf("profile venus: template lacks %s", namePlaceholder)
	}
	if p.Closing == "" {
		return fmt.Errorf("profile: closing is required")
	}
	return nil
}

func (g genderText) validate() error {
	if g.Heading == "" {
		return fmt.Errorf("gender: heading is required")
	}
	for slug, texts := range g.Modules {
		if _, err := domain.ModuleBySlug(slug); err != nil {
			return fmt.Errorf("gender: %w", err)
		}
		for _, gender := range []domain.Gender{domain.GenderMale, domain.GenderFemale, domain.GenderNonBinary} {
			if strings.TrimSpace(texts[gender]) == "" {
				return fmt.Errorf("gender: module %s has no %s text", slug, gender)
			}
		}
	}
	return nil
}
