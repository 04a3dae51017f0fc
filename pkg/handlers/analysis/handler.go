package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/de-tools/jyotish-atlas/pkg/models/api"
	"github.com/de-tools/jyotish-atlas/pkg/models/domain"
	"github.com/de-tools/jyotish-atlas/pkg/services/orchestrator"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// Runner is the orchestrator surface the handlers need.
type Runner interface {
	Run(ctx context.Context, req orchestrator.Request) (domain.AnalysisResponse, error)
	RunModule(ctx context.Context, id domain.ModuleID, req orchestrator.Request) (domain.ModuleResult, error)
	Profile(ctx context.Context, person domain.BirthDetails) (domain.Profile, error)
}

type Handler struct {
	runner Runner
}

func NewHandler(runner Runner) *Handler {
	return &Handler{runner: runner}
}

// Analyze serves POST /analyze.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	h.runGroup(w, r, orchestrator.EntryAnalyze)
}

// AnalyzeModules serves POST /modules; Compatibility is not in its default list.
func (h *Handler) AnalyzeModules(w http.ResponseWriter, r *http.Request) {
	h.runGroup(w, r, orchestrator.EntryModules)
}

// AnalyzeModule serves the single-module route of id.
func (h *Handler) AnalyzeModule(id domain.ModuleID) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := zerolog.Ctx(ctx).With().Str("module", id.Slug()).Logger()

		req, err := decodeRequest(w, r)
		if err != nil {
			writeError(w, &logger, err)
			return
		}

		result, err := h.runner.RunModule(ctx, id, req)
		if err != nil {
			writeError(w, &logger, err)
			return
		}

		writeJSON(w, &logger, http.StatusOK, api.NewModuleResult(result))
	}
}

// Profile serves POST /seduction_profile. Only the first person's fields are read.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	req, err := decodeRequest(w, r)
	if err != nil {
		writeError(w, logger, err)
		return
	}

	p, err := h.runner.Profile(ctx, req.Person)
	if err != nil {
		writeError(w, logger, err)
		return
	}

	writeJSON(w, logger, http.StatusOK, api.NewProfileResponse(p))
}

// ListModules serves GET /modules.
func (h *Handler) ListModules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, zerolog.Ctx(r.Context()), http.StatusOK, api.NewModules(domain.AllModules))
}

func (h *Handler) runGroup(w http.ResponseWriter, r *http.Request, entry orchestrator.Entry) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	format, err := domain.ParseReportFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, logger, err)
		return
	}

	req, err := decodeRequest(w, r)
	if err != nil {
		writeError(w, logger, err)
		return
	}
	req.Entry = entry
	req.Format = format

	resp, err := h.runner.Run(ctx, req)
	if err != nil {
		writeError(w, logger, err)
		return
	}

	writeJSON(w, logger, http.StatusOK, api.NewAnalysisResponse(resp))
}

var errInvalidBody = errors.New("invalid request body")

func decodeRequest(w http.ResponseWriter, r *http.Request) (orchestrator.Request, error) {
	var body api.AnalysisRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		return orchestrator.Request{}, errInvalidBody
	}

	person, err := body.Person()
	if err != nil {
		return orchestrator.Request{}, err
	}

	var gender domain.Gender
	if body.Gender != nil {
		if gender, err = domain.ParseGender(*body.Gender); err != nil {
			return orchestrator.Request{}, err
		}
	}

	return orchestrator.Request{
		Person: person,
		Partner: orchestrator.Partner{
			Name:      body.SecondName,
			BirthDate: body.SecondBirthDate,
			BirthTime: body.SecondBirthTime,
			Location:  body.SecondLocation,
			UTCOffset: body.SecondUTCOffset,
		},
		Modules: body.Modules,
		Gender:  gender,
	}, nil
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errInvalidBody), domain.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUpstreamGeocoder):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, logger *zerolog.Logger, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("analysis request failed")
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("analysis request rejected")
	}
	writeJSON(w, logger, status, api.ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, logger *zerolog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().
			Err(err).
			Msg("failed to encode response")
	}
}
