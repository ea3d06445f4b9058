package validation

import (
	"errors"
	"testing"

	"github.com/blaisecz/sleep-coach/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() *domain.SleepRecord {
	return &domain.SleepRecord{
		Date:       "2024-12-02",
		TotalSleep: &domain.Duration{Hours: 7, Minutes: 30},
		Awake:      domain.AwakeTime{Minutes: 5},
		REM:        &domain.Duration{Hours: 1, Minutes: 30},
		Light:      &domain.Duration{Hours: 3, Minutes: 0},
		Deep:       &domain.Duration{Hours: 2, Minutes: 30},
		SleepTime:  &domain.TimeSpan{From: "22:00", To: "05:30"},
	}
}

func TestValidate_ValidRecord(t *testing.T) {
	res := NewValidator().Validate(validRecord())

	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	assert.NoError(t, res.Err())
}

func TestValidate_NilRecord(t *testing.T) {
	res := NewValidator().Validate(nil)

	assert.False(t, res.Valid)
	assert.Equal(t, []string{msgInvalidPayload}, res.Errors)
}

func TestValidate_MissingRemAndSleepTime(t *testing.T) {
	rec := validRecord()
	rec.REM = nil
	rec.SleepTime = nil

	res := NewValidator().Validate(rec)

	assert.False(t, res.Valid)
	assert.Equal(t, []string{
		"REM-Schlaf ist erforderlich",
		"Schlafenszeit ist erforderlich",
	}, res.Errors)
}

func TestValidate_AllRequiredFieldsReportedTogether(t *testing.T) {
	res := NewValidator().Validate(&domain.SleepRecord{})

	assert.False(t, res.Valid)
	assert.Len(t, res.Errors, 6)
	assert.Equal(t, "Datum ist erforderlich", res.Errors[0])
}

func TestValidate_ZeroTotalSleep(t *testing.T) {
	rec := validRecord()
	rec.TotalSleep = &domain.Duration{}

	res := NewValidator().Validate(rec)

	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors, "Gesamtschlaf: Bitte eine Dauer größer als 0 angeben")
}

func TestValidate_ZeroPhases(t *testing.T) {
	rec := validRecord()
	rec.REM = &domain.Duration{}
	rec.Deep = &domain.Duration{}

	res := NewValidator().Validate(rec)

	assert.False(t, res.Valid)
	assert.Equal(t, []string{
		"REM-Schlaf: Bitte eine Dauer größer als 0 angeben",
		"Tiefschlaf: Bitte eine Dauer größer als 0 angeben",
	}, res.Errors)
}

func TestValidate_MidnightStartIsAccepted(t *testing.T) {
	rec := validRecord()
	rec.SleepTime = &domain.TimeSpan{From: "00:00", To: "07:30"}

	assert.True(t, NewValidator().Validate(rec).Valid)
}

func TestValidate_EmptyTimeSpan(t *testing.T) {
	rec := validRecord()
	rec.SleepTime = &domain.TimeSpan{From: "", To: "07:30"}

	res := NewValidator().Validate(rec)

	assert.False(t, res.Valid)
	assert.Equal(t, []string{"Schlafenszeit: Einschlaf- und Aufwachzeit sind erforderlich"}, res.Errors)
}

func TestValidate_PhaseConsistencyWarningNeverBlocks(t *testing.T) {
	rec := validRecord()
	rec.Light = &domain.Duration{Hours: 6}

	res := NewValidator().Validate(rec)

	assert.True(t, res.Valid)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "Gesamtschlaf (450 min)")
}

func TestValidate_PhaseConsistencyWithinTolerance(t *testing.T) {
	rec := validRecord()
	// 90 + 180 + 150 + 5 = 425 vs 450: within 10 %
	res := NewValidator().Validate(rec)

	assert.Empty(t, res.Warnings)
}

func TestValidate_DoesNotMutate(t *testing.T) {
	rec := validRecord()
	rec.REM = &domain.Duration{}
	before := *rec.REM

	NewValidator().Validate(rec)

	assert.Equal(t, before, *rec.REM)
}

func TestResultErr_ReturnsValidationError(t *testing.T) {
	res := Result{Errors: []string{"a", "b"}}

	var ve *domain.ValidationError
	require.True(t, errors.As(res.Err(), &ve))
	assert.Equal(t, "a, b", ve.Error())
}
