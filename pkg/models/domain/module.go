package domain

import "fmt"

// ModuleID is the closed set of analysis modules. The zero value is not a module.
type ModuleID int

const (
	Personality ModuleID = iota + 1
	Career
	Education
	Marriage
	Sexuality
	BodyType
	KarmaSoulPath
	ForeignTravel
	Spirituality
	Ashtakavarga
	DashaTransit
	PsychologicalVulnerability
	Health
	ChronicDisease
	Compatibility
)

type moduleInfo struct {
	name string
	slug string
}

var moduleInfos = map[ModuleID]moduleInfo{
	Personality:                {name: "Personality", slug: "personality"},
	Career:                     {name: "Career", slug: "career"},
	Education:                  {name: "Education", slug: "education"},
	Marriage:                   {name: "Marriage", slug: "marriage"},
	Sexuality:                  {name: "Sexuality", slug: "sexuality"},
	BodyType:                   {name: "Body type", slug: "body_type"},
	KarmaSoulPath:              {name: "Karma & Soul Path", slug: "karma"},
	ForeignTravel:              {name: "Foreign Travel", slug: "foreign_travel"},
	Spirituality:               {name: "Spirituality", slug: "spirituality"},
	Ashtakavarga:               {name: "Ashtakavarga", slug: "ashtakavarga"},
	DashaTransit:               {name: "Dasha/Transit", slug: "dasha_transit"},
	PsychologicalVulnerability: {name: "Psychological Vulnerability", slug: "psychological"},
	Health:                     {name: "Health", slug: "health"},
	ChronicDisease:             {name: "Chronic Disease Indicators", slug: "chronic"},
	Compatibility:              {name: "Compatibility", slug: "compatibility"},
}

// AllModules is the canonical enumeration order.
var AllModules = []ModuleID{
	Personality,
	Career,
	Education,
	Marriage,
	Sexuality,
	BodyType,
	KarmaSoulPath,
	ForeignTravel,
	Spirituality,
	Ashtakavarga,
	DashaTransit,
	PsychologicalVulnerability,
	Health,
	ChronicDisease,
	Compatibility,
}

// SingleChartModules is AllModules without Compatibility.
func SingleChartModules() []ModuleID {
	out := make([]ModuleID, 0, len(AllModules)-1)
	for _, m := range AllModules {
		if !m.NeedsPartner() {
			out = append(out, m)
		}
	}
	return out
}

func (m ModuleID) Valid() bool {
	_, ok := moduleInfos[m]
	return ok
}

// String returns the wire name, e.g. "Karma & Soul Path".
func (m ModuleID) String() string {
	if info, ok := moduleInfos[m]; ok {
		return info.name
	}
	return fmt.Sprintf("ModuleID(%d)", int(m))
}

// Slug is the path segment of the module's own route.
func (m ModuleID) Slug() string {
	return moduleInfos[m].slug
}

// NeedsPartner reports whether the module reads a second chart.
func (m ModuleID) NeedsPartner() bool {
	return m == Compatibility
}

// ParseModuleID matches the exact, case-sensitive wire name.
func ParseModuleID(name string) (ModuleID, error) {
	for _, m := range AllModules {
		if moduleInfos[m].name == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownModule, name)
}

// ModuleBySlug resolves a route slug.
func ModuleBySlug(slug string) (ModuleID, error) {
	for _, m := range AllModules {
		if moduleInfos[m].slug == slug {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownModule, slug)
}

// ParseModuleIDs validates a whole list before anything runs.
func ParseModuleIDs(names []string) ([]ModuleID, error) {
	out := make([]ModuleID, 0, len(names))
	for _, n := range names {
		m, err := ParseModuleID(n)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// MarshalText and UnmarshalText make ModuleID usable directly in JSON payloads.
func (m ModuleID) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownModule, int(m))
	}
	return []byte(m.String()), nil
}

func (m *ModuleID) UnmarshalText(b []byte) error {
	id, err := ParseModuleID(string(b))
	if err != nil {
		return err
	}
	*m = id
	return nil
}
