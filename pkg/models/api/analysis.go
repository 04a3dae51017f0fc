package api

import (
	"fmt"
	"strings"

	"github.com/de-tools/jyotish-atlas/pkg/models/domain"
)

// AnalysisRequest is the body of every analysis route. Pointer fields tell an
// absent field apart from a zero value.
type AnalysisRequest struct {
	Name      *string  `json:"name"`
	BirthDate *string  `json:"birth_date"`
	BirthTime *string  `json:"birth_time"`
	Location  *string  `json:"location"`
	UTCOffset *float64 `json:"utc_offset"`
	Modules   []string `json:"modules,omitempty"`
	Gender    *string  `json:"gender,omitempty"`

	SecondName      *string  `json:"second_name,omitempty"`
	SecondBirthDate *string  `json:"second_birth_date,omitempty"`
	SecondBirthTime *string  `json:"second_birth_time,omitempty"`
	SecondLocation  *string  `json:"second_location,omitempty"`
	SecondUTCOffset *float64 `json:"second_utc_offset,omitempty"`
}

// Person returns the first person's details or ErrMissingField for the first absent field.
func (r AnalysisRequest) Person() (domain.BirthDetails, error) {
	text := []struct {
		field string
		value *string
	}{
		{"name", r.Name},
		{"birth_date", r.BirthDate},
		{"birth_time", r.BirthTime},
		{"location", r.Location},
	}
	for _, f := range text {
		if f.value == nil || strings.TrimSpace(*f.value) == "" {
			return domain.BirthDetails{}, fmt.Errorf("%w: %s", domain.ErrMissingField, f.field)
		}
	}
	if r.UTCOffset == nil {
		return domain.BirthDetails{}, fmt.Errorf("%w: utc_offset", domain.ErrMissingField)
	}

	return domain.BirthDetails{
		Name:      strings.TrimSpace(*r.Name),
		BirthDate: strings.TrimSpace(*r.BirthDate),
		BirthTime: strings.TrimSpace(*r.BirthTime),
		Location:  strings.TrimSpace(*r.Location),
		UTCOffset: *r.UTCOffset,
	}, nil
}

type ModuleResult struct {
	Module   string `json:"module"`
	Analysis string `json:"analysis"`
}

type AnalysisResponse struct {
	Name       string         `json:"name"`
	Results    []ModuleResult `json:"results"`
	ReportPath string         `json:"report_path,omitempty"`
}

type ProfileResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type Module struct {
	Module string `json:"module"`
	Slug   string `json:"slug"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewModuleResult(r domain.ModuleResult) ModuleResult {
	return ModuleResult{Module: r.Module.String(), Analysis: r.Analysis}
}

func NewAnalysisResponse(resp domain.AnalysisResponse) AnalysisResponse {
	results := make([]ModuleResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, NewModuleResult(r))
	}
	return AnalysisResponse{Name: resp.Name, Results: results, ReportPath: resp.ReportPath}
}

func NewProfileResponse(p domain.Profile) ProfileResponse {
	return ProfileResponse{Name: p.Name, Message: p.Message}
}

func NewModules(ids []domain.ModuleID) []Module {
	out := make([]Module, 0, len(ids))
	for _, id := range ids {
		out = append(out, Module{Module: id.String(), Slug: id.Slug()})
	}
	return out
}
