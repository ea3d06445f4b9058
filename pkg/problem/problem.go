package problem

import (
	"encoding/json"
	"net/http"
)

const ContentType = "application/json; charset=utf-8"

// Error codes returned in the envelope.
const (
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeConfigurationError = "CONFIGURATION_ERROR"
	CodeInvalidJSON        = "INVALID_JSON"
	CodeValidationError    = "VALIDATION_ERROR"
	CodeLLMError           = "LLM_ERROR"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeNotFound           = "NOT_FOUND"
)

// Problem is the error envelope: {"success": false, "error": {"code", "message"}}.
type Problem struct {
	Status  int    `json:"-"`
	Success bool   `json:"success"`
	Error   Detail `json:"error"`
}

// Detail is the error object inside the envelope.
type Detail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// New creates a new Problem
func New(status int, code, message string) *Problem {
	return &Problem{
		Status: status,
		Error:  Detail{Code: code, Message: message},
	}
}

// Write writes the problem to the response
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(p.Status)
	json.NewEncoder(w).Encode(p)
}

// Common problem constructors

func MethodNotAllowed() *Problem {
	return New(http.StatusMethodNotAllowed, CodeMethodNotAllowed, "Methode nicht erlaubt")
}

func ConfigurationError() *Problem {
	return New(http.StatusInternalServerError, CodeConfigurationError, "Der Dienst ist nicht korrekt konfiguriert")
}

func InvalidJSON() *Problem {
	return New(http.StatusBadRequest, CodeInvalidJSON, "Ungültiges JSON im Request-Body")
}

func ValidationError(message string) *Problem {
	return New(http.StatusBadRequest, CodeValidationError, message)
}

// LLMError hides the provider detail; status defaults to 500.
func LLMError(status int) *Problem {
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}
	return New(status, CodeLLMError, "Die KI-Analyse ist fehlgeschlagen. Bitte später erneut versuchen.")
}

func RateLimited() *Problem {
	return New(http.StatusTooManyRequests, CodeRateLimited, "Zu viele Anfragen. Bitte später erneut versuchen.")
}

func NotFound() *Problem {
	return New(http.StatusNotFound, CodeNotFound, "Nicht gefunden")
}

// InternalError uses detail as the message when given, else a generic one.
func InternalError(detail string) *Problem {
	msg := "Ein unerwarteter Fehler ist aufgetreten"
	if detail != "" {
		msg = detail
	}
	return New(http.StatusInternalServerError, CodeInternalError, msg)
}
