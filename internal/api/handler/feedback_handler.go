package handler

import (
	"encoding/json"
	"net/http"

	"github.com/blaisecz/sleep-coach/internal/domain"
	"github.com/blaisecz/sleep-coach/internal/service"
	"github.com/blaisecz/sleep-coach/internal/validation"
	"github.com/blaisecz/sleep-coach/pkg/logger"
	"github.com/blaisecz/sleep-coach/pkg/problem"
)

type FeedbackHandler struct {
	service service.AnalysisService
	log     *logger.Logger
}

func NewFeedbackHandler(svc service.AnalysisService, log *logger.Logger) *FeedbackHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &FeedbackHandler{service: svc, log: log.With("handler", "FeedbackHandler")}
}

// Submit handles POST /api/feedback
// @Summary Rate a sleep report
// @Description Attaches a 1-5 rating and optional comment to the trace of an earlier analysis.
// @Tags analysis
// @Accept json
// @Produce json
// @Param body body domain.Feedback true "Feedback"
// @Success 204 "Feedback accepted"
// @Failure 400 {object} problem.Problem "Invalid request"
// @Failure 429 {object} problem.Problem "Rate limited"
// @Router /api/feedback [post]
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req domain.Feedback
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes)).Decode(&req); err != nil {
		problem.InvalidJSON().Write(w)
		return
	}

	if fieldErrors := validation.Struct(req); fieldErrors != nil {
		problem.ValidationError(validation.JoinFieldErrors(fieldErrors)).Write(w)
		return
	}

	// Scores are best effort.
	if err := h.service.SubmitFeedback(r.Context(), req); err != nil {
		h.log.Warn("feedback not recorded", "trace_id", req.TraceID, "error", err)
	}

	w.WriteHeader(http.StatusNoContent)
}
