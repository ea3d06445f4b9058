package validation

import (
	"errors"
	"fmt"

	"github.com/blaisecz/sleep-coach/internal/domain"
	"github.com/go-playground/validator/v10"
)

// PhaseTolerance is the allowed relative gap between the summed phases
// (REM + light + deep + awake) and the reported total sleep.
const PhaseTolerance = 0.10

const msgInvalidPayload = "Ungültige Schlafdaten"

var fieldLabels = map[string]string{
	"date":       "Datum",
	"totalSleep": "Gesamtschlaf",
	"rem":        "REM-Schlaf",
	"light":      "Kernschlaf",
	"deep":       "Tiefschlaf",
	"sleepTime":  "Schlafenszeit",
}

// Result is the outcome of validating a sanitized SleepRecord.
type Result struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Err returns nil for a valid result, otherwise a *domain.ValidationError.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &domain.ValidationError{Errors: r.Errors}
}

// Validator checks a sanitized record for completeness and plausibility.
// It never modifies the record.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate runs, in order: required fields (all reported together, and
// nothing else is checked if any are missing), duration presence, time span
// presence, then the warning-only phase consistency check.
func (v *Validator) Validate(rec *domain.SleepRecord) Result {
	if rec == nil {
		return Result{Errors: []string{msgInvalidPayload}}
	}

	if missing := requiredErrors(rec); len(missing) > 0 {
		return Result{Errors: missing}
	}

	var errs []string
	durations := []struct {
		key string
		d   *domain.Duration
	}{
		{"totalSleep", rec.TotalSleep},
		{"rem", rec.REM},
		{"light", rec.Light},
		{"deep", rec.Deep},
	}
	for _, item := range durations {
		if item.d.IsZero() {
			errs = append(errs, fieldLabels[item.key]+": Bitte eine Dauer größer als 0 angeben")
		}
	}

	if rec.SleepTime.From == "" || rec.SleepTime.To == "" {
		errs = append(errs, fieldLabels["sleepTime"]+": Einschlaf- und Aufwachzeit sind erforderlich")
	}

	return Result{
		Valid:    len(errs) == 0,
		Errors:   errs,
		Warnings: phaseWarnings(rec),
	}
}

func requiredErrors(rec *domain.SleepRecord) []string {
	err := validate.Struct(rec)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{msgInvalidPayload}
	}

	var errs []string
	for _, fe := range validationErrors {
		if fe.Tag() != "required" {
			continue
		}
		label, ok := fieldLabels[fe.Field()]
		if !ok {
			label = fe.Field()
		}
		errs = append(errs, label+" ist erforderlich")
	}
	return errs
}

func phaseWarnings(rec *domain.SleepRecord) []string {
	total := rec.TotalSleep.TotalMinutes()
	if total == 0 {
		return nil
	}

	sum := rec.REM.TotalMinutes() + rec.Light.TotalMinutes() + rec.Deep.TotalMinutes() + rec.Awake.Minutes
	diff := sum - total
	if diff < 0 {
		diff = -diff
	}
	if float64(diff) <= PhaseTolerance*float64(total) {
		return nil
	}
	return []string{fmt.Sprintf(
		"Summe der Schlafphasen (%d min) weicht um %d min vom Gesamtschlaf (%d min) ab",
		sum, diff, total,
	)}
}
