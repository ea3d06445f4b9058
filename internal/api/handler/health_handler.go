package handler

import (
	"net/http"
	"time"
)

// HealthResponse is the static health payload.
type HealthResponse struct {
	Status    string    `json:"status" example:"ok"`
	Service   string    `json:"service" example:"sleep-coach"`
	Timestamp time.Time `json:"timestamp"`
}

// Health handles GET / and GET /health
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   "sleep-coach",
		Timestamp: time.Now().UTC(),
	})
}
