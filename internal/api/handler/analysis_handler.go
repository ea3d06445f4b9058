package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/blaisecz/sleep-coach/internal/domain"
	"github.com/blaisecz/sleep-coach/internal/service"
	"github.com/blaisecz/sleep-coach/pkg/logger"
	"github.com/blaisecz/sleep-coach/pkg/problem"
)

// MaxBodyBytes caps the analyze and feedback request bodies.
const MaxBodyBytes = 64 << 10

type AnalysisHandler struct {
	service      service.AnalysisService
	log          *logger.Logger
	exposeDetail bool
}

// NewAnalysisHandler creates the handler. exposeDetail echoes internal error
// text to clients and is only meant for development.
func NewAnalysisHandler(svc service.AnalysisService, log *logger.Logger, exposeDetail bool) *AnalysisHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AnalysisHandler{
		service:      svc,
		log:          log.With("handler", "AnalysisHandler"),
		exposeDetail: exposeDetail,
	}
}

// Analyze handles /api/analyze
// @Summary Analyze one night of sleep
// @Description Sanitizes and validates the sleep phases, asks the LLM for a German report and returns the parsed score and sections.
// @Tags analysis
// @Accept json
// @Produce json
// @Param body body domain.SleepRecord true "Sleep record"
// @Success 200 {object} domain.AnalysisResult
// @Failure 400 {object} problem.Problem "Invalid JSON or validation error"
// @Failure 405 {object} problem.Problem "Method not allowed"
// @Failure 429 {object} problem.Problem "Rate limited"
// @Failure 500 {object} problem.Problem "Configuration or internal error"
// @Failure 502 {object} problem.Problem "LLM error"
// @Router /api/analyze [post]
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST, OPTIONS")
		problem.MethodNotAllowed().Write(w)
		return
	}

	if err := h.service.CheckConfigured(); err != nil {
		h.log.Error("analysis requested without llm credential")
		problem.ConfigurationError().Write(w)
		return
	}

	raw, err := decodeBody(w, r)
	if err != nil {
		problem.InvalidJSON().Write(w)
		return
	}

	result, err := h.service.Analyze(r.Context(), raw)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *AnalysisHandler) writeError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	var gatewayErr *domain.GatewayError

	switch {
	case errors.As(err, &validationErr):
		problem.ValidationError(validationErr.Error()).Write(w)
	case errors.As(err, &gatewayErr):
		problem.LLMError(gatewayErr.StatusCode).Write(w)
	case errors.Is(err, domain.ErrNotConfigured):
		problem.ConfigurationError().Write(w)
	default:
		h.log.Error("analysis failed", "error", err)
		detail := ""
		if h.exposeDetail {
			detail = err.Error()
		}
		problem.InternalError(detail).Write(w)
	}
}

// decodeBody reads at most MaxBodyBytes of JSON. Numbers stay json.Number
// so the sanitizer sees exactly what the client sent.
func decodeBody(w http.ResponseWriter, r *http.Request) (any, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", problem.ContentType)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
