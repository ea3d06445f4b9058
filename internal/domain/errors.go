package domain

import (
	"errors"
	"strings"
)

var (
	// ErrNotConfigured means the LLM credential is missing on the server.
	ErrNotConfigured = errors.New("analysis service not configured")
	ErrInvalidInput  = errors.New("invalid input")
)

// ValidationError carries every rule a sleep record violated.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Errors, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// GatewayError is a failed LLM call. Detail is for logs only.
type GatewayError struct {
	StatusCode int
	Detail     string
}

func (e *GatewayError) Error() string {
	return "llm gateway: " + e.Detail
}
