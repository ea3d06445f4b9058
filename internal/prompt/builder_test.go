package prompt

import (
	"strings"
	"testing"

	"github.com/blaisecz/sleep-coach/internal/domain"
	"github.com/stretchr/testify/assert"
)

func scenarioRecord() domain.SleepRecord {
	return domain.SleepRecord{
		Date:       "2024-12-02",
		TotalSleep: &domain.Duration{Hours: 7, Minutes: 30},
		Awake:      domain.AwakeTime{Minutes: 5},
		REM:        &domain.Duration{Hours: 1, Minutes: 30},
		Light:      &domain.Duration{Hours: 3, Minutes: 0},
		Deep:       &domain.Duration{Hours: 2, Minutes: 30},
		SleepTime:  &domain.TimeSpan{From: "22:00", To: "05:30"},
	}
}

func TestUserPrompt_Scenario(t *testing.T) {
	got := UserPrompt(scenarioRecord())

	want := []string{
		"- Datum: 2024-12-02\n",
		"- Gesamtschlaf: 7h 30min\n",
		"- Wachzeit: 5min\n",
		"- REM: 1h 30min\n",
		"- Kern: 3h 0min\n",
		"- Tief: 2h 30min\n",
		"- Schlafenszeit: 22:00 - 05:30\n",
		"- Notizen: keine\n",
	}
	last := -1
	for _, line := range want {
		idx := strings.Index(got, line)
		if !assert.GreaterOrEqual(t, idx, 0, "missing %q", line) {
			continue
		}
		assert.Greater(t, idx, last, "%q out of order", line)
		assert.Equal(t, 1, strings.Count(got, line), "%q repeated", line)
		last = idx
	}
}

func TestUserPrompt_ZeroValuesRenderedExplicitly(t *testing.T) {
	rec := domain.SleepRecord{Date: "2024-01-01"}

	got := UserPrompt(rec)

	assert.Contains(t, got, "- Gesamtschlaf: 0h 0min\n")
	assert.Contains(t, got, "- Wachzeit: 0min\n")
	assert.Contains(t, got, "- Schlafenszeit: 00:00 - 00:00\n")
}

func TestUserPrompt_Deterministic(t *testing.T) {
	rec := scenarioRecord()
	rec.Notes = "Spät Kaffee"

	first := UserPrompt(rec)
	assert.Equal(t, first, UserPrompt(rec))
	assert.Contains(t, first, "- Notizen: Spät Kaffee\n")
}

func TestSystemPrompt_TextContract(t *testing.T) {
	b := NewBuilder()
	sys := b.SystemPrompt()

	assert.False(t, b.Structured())
	assert.Contains(t, sys, "NIEMALS als JSON")
	assert.Contains(t, sys, "Gesamt: <Punkte> / 50 = <Prozent> % (<Bewertung>)")
	assert.Contains(t, sys, InsufficientData)

	order := []string{SectionScore + ":", SectionAnalysis + ":", SectionTrend + ":", SectionRecommendation + ":"}
	last := -1
	for _, h := range order {
		idx := strings.Index(sys, h)
		assert.Greater(t, idx, last, "section %q out of order", h)
		last = idx
	}
}

func TestSystemPrompt_Structured(t *testing.T) {
	b := NewBuilder(WithStructuredOutput(true))

	assert.True(t, b.Structured())
	assert.Contains(t, b.SystemPrompt(), "JSON-Objekt")
	assert.NotContains(t, b.SystemPrompt(), "NIEMALS als JSON")
}

func TestSystemPrompt_Override(t *testing.T) {
	b := NewBuilder(WithSystemOverride("  custom prompt \n"))
	assert.Equal(t, "custom prompt", b.SystemPrompt())

	b = NewBuilder(WithSystemOverride("   "))
	assert.Contains(t, b.SystemPrompt(), SectionScore)
}

func TestBuild(t *testing.T) {
	p := NewBuilder().Build(scenarioRecord())

	assert.Contains(t, p.User, "Gesamtschlaf: 7h 30min")
	assert.Equal(t, NewBuilder().SystemPrompt(), p.System)
}
