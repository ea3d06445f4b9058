package report

import (
	"encoding/json"
	"testing"

	"github.com/blaisecz/sleep-coach/internal/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReply = `SCHLAFBEWERTUNG:
Gesamt: 36 / 50 = 72 % (Gut)
Gesamtschlaf: 9/10

ANALYSE:
Super Nacht! Dein Tiefschlaf ist stark.

TREND (9 TAGE):
Unzureichende Daten

EMPFEHLUNG:
Geh zur gleichen Zeit ins Bett.
Weniger Koffein am Abend.`

func TestExtractScore(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		want      string
		wantMatch bool
	}{
		{"plain", "Gesamt: 36 / 50 = 72 % (Gut)", "72% (Gut)", true},
		{"english", "Total: 45/50 = 90% (Excellent)", "90% (Excellent)", true},
		{"markdown bold", "**Gesamt:** 30 / 50 = 60 % (Befriedigend)", "60% (Befriedigend)", true},
		{"decimal comma", "Gesamt: 37,5 / 50 = 75 % (Gut)", "75% (Gut)", true},
		{"label with umlaut", "gesamt: 12 / 50 = 24 % (Verbesserungswürdig)", "24% (Verbesserungswürdig)", true},
		{"no score", "Eine schöne Nacht ohne Zahlen.", FallbackScore, false},
		{"wrong denominator", "Gesamt: 36 / 40 = 90 % (Gut)", FallbackScore, false},
		{"empty", "", FallbackScore, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, matched := ExtractScore(tt.text)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantMatch, matched)
		})
	}
}

func TestParse_PlainText(t *testing.T) {
	r := Parse(sampleReply)

	assert.Equal(t, "72% (Gut)", r.Score)
	assert.True(t, r.ScoreMatched)
	assert.Equal(t, sampleReply, r.Analysis)
	assert.Equal(t, "Unzureichende Daten", r.Trend)
	assert.Equal(t, "Geh zur gleichen Zeit ins Bett.\nWeniger Koffein am Abend.", r.Recommendation)
}

func TestParse_FallbackPreservesText(t *testing.T) {
	text := "Ich kann das gerade nicht bewerten."

	r := Parse(text)

	assert.Equal(t, FallbackScore, r.Score)
	assert.False(t, r.ScoreMatched)
	assert.Equal(t, text, r.Analysis)
	assert.Equal(t, FallbackScore, r.Trend)
	assert.Equal(t, FallbackScore, r.Recommendation)
}

func TestParse_DecoratedHeaders(t *testing.T) {
	text := "## **TREND:** stabil\n\n**EMPFEHLUNG**\nMehr Bewegung."

	r := Parse(text)

	assert.Equal(t, "stabil", r.Trend)
	assert.Equal(t, "Mehr Bewegung.", r.Recommendation)
}

func TestParse_LowercaseLinesAreNotHeaders(t *testing.T) {
	text := "EMPFEHLUNG:\nTrend: eher gut\nAnalyse folgt."

	r := Parse(text)

	assert.Equal(t, "Trend: eher gut\nAnalyse folgt.", r.Recommendation)
	assert.Equal(t, FallbackScore, r.Trend)
}

func TestParse_TitleCaseHeaders(t *testing.T) {
	text := "Schlafbewertung:\nGesamt: 38 / 50 = 76 % (Gut)\n\nAnalyse:\nGute Nacht.\n\nTrend (9 Tage):\nStabil.\n\n**Empfehlung:**\nFrüher ins Bett."

	r := Parse(text)

	assert.Equal(t, "76% (Gut)", r.Score)
	assert.Equal(t, "Stabil.", r.Trend)
	assert.Equal(t, "Früher ins Bett.", r.Recommendation)
	assert.Equal(t, text, r.Analysis)
}

func TestMatchHeader(t *testing.T) {
	tests := []struct {
		line    string
		wantKey string
		wantOK  bool
	}{
		{"TREND (9 TAGE):", prompt.SectionTrend, true},
		{"Trend (9 Tage):", prompt.SectionTrend, true},
		{"trend:", prompt.SectionTrend, true},
		{"## Empfehlung", prompt.SectionRecommendation, true},
		{"EMPFEHLUNG: Mehr Schlaf", prompt.SectionRecommendation, true},
		{"Empfehlung: Mehr Schlaf", "", false},
		{"Analyse folgt.", "", false},
		{"Gesamt: 36 / 50 = 72 % (Gut)", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			key, _, ok := matchHeader(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func structuredBody(t *testing.T) string {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"points":         36,
		"percent":        72,
		"grade":          "Gut",
		"analysis":       "Starke Nacht.",
		"trend":          "",
		"recommendation": "Früher schlafen.",
	})
	require.NoError(t, err)
	return string(body)
}

func TestParseStructured(t *testing.T) {
	text := structuredBody(t)

	r := ParseStructured(text)

	assert.Equal(t, "72% (Gut)", r.Score)
	assert.True(t, r.ScoreMatched)
	assert.Equal(t, text, r.Analysis)
	assert.Equal(t, prompt.InsufficientData, r.Trend)
	assert.Equal(t, "Früher schlafen.", r.Recommendation)
	assert.Contains(t, r.Rendered, "Gesamt: 36 / 50 = 72 % (Gut)")
	assert.Contains(t, r.Rendered, "Starke Nacht.")

	// the rendered body parses back to the same score
	assert.Equal(t, r.Score, Parse(r.Rendered).Score)
}

func TestParse_JSONReplyInTextModeStaysRaw(t *testing.T) {
	text := structuredBody(t)

	r := Parse(text)

	assert.Equal(t, text, r.Analysis)
	assert.Empty(t, r.Rendered)
	assert.Equal(t, FallbackScore, r.Score)
	assert.False(t, r.ScoreMatched)
}

func TestParseStructured_CodeFence(t *testing.T) {
	text := "```json\n{\"points\":45.5,\"percent\":91,\"grade\":\"Ausgezeichnet\",\"analysis\":\"Top.\",\"trend\":\"Unzureichende Daten\",\"recommendation\":\"Weiter so.\"}\n```"

	r := ParseStructured(text)

	assert.Equal(t, "91% (Ausgezeichnet)", r.Score)
	assert.Equal(t, text, r.Analysis)
	assert.Contains(t, r.Rendered, "Gesamt: 45.5 / 50")
}

func TestParseStructured_IncompleteJSONFallsBackToText(t *testing.T) {
	text := `{"analysis": "nur Text"}`

	r := ParseStructured(text)

	assert.Equal(t, FallbackScore, r.Score)
	assert.Equal(t, text, r.Analysis)
	assert.Empty(t, r.Rendered)
}

func TestParseStructured_PlainTextReply(t *testing.T) {
	r := ParseStructured(sampleReply)

	assert.Equal(t, "72% (Gut)", r.Score)
	assert.Equal(t, sampleReply, r.Analysis)
	assert.Equal(t, "Unzureichende Daten", r.Trend)
}

func TestSchema(t *testing.T) {
	s := Schema()

	assert.Equal(t, "object", s["type"])
	assert.Len(t, s["required"], 6)
	_, err := json.Marshal(s)
	assert.NoError(t, err)
}
