// Package report turns the LLM reply into the fields of an AnalysisResult.
// Parsing never fails: a reply without the score line degrades to
// FallbackScore and the raw text is always kept as the analysis body.
// JSON replies are only decoded by ParseStructured, for requests made in
// structured mode.
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/blaisecz/sleep-coach/internal/prompt"
)

// FallbackScore is returned when no score line can be found.
const FallbackScore = "Siehe Analyse"

var scorePattern = regexp.MustCompile(
	`(?i)(?:Gesamt|Total)[*_\s]*:[*_\s]*(\d+(?:[.,]\d+)?)\s*/\s*50\s*=\s*(\d+(?:[.,]\d+)?)\s*%\s*\(([^)\n]+)\)`,
)

// Report is the parsed reply. Analysis is always the raw reply text;
// Rendered holds the sectioned text rebuilt from a structured reply.
type Report struct {
	Score          string
	Analysis       string
	Trend          string
	Recommendation string
	Rendered       string
	ScoreMatched   bool
}

// ExtractScore returns "<percent>% (<label>)" or FallbackScore.
func ExtractScore(text string) (string, bool) {
	m := scorePattern.FindStringSubmatch(text)
	if m == nil {
		return FallbackScore, false
	}
	return fmt.Sprintf("%s%% (%s)", m[2], strings.TrimSpace(m[3])), true
}

// Parse extracts the score and lifts the trend and recommendation sections
// out of a plain-text reply.
func Parse(text string) Report {
	score, matched := ExtractScore(text)
	sections := splitSections(text)

	r := Report{
		Score:          score,
		Analysis:       text,
		Trend:          sections[prompt.SectionTrend],
		Recommendation: sections[prompt.SectionRecommendation],
		ScoreMatched:   matched,
	}
	if r.Trend == "" {
		r.Trend = FallbackScore
	}
	if r.Recommendation == "" {
		r.Recommendation = FallbackScore
	}
	return r
}

// ParseStructured decodes a reply requested with Schema. Replies that do not
// match the schema are parsed as plain text.
func ParseStructured(text string) Report {
	if r, ok := parseStructured(text); ok {
		return r
	}
	return Parse(text)
}

var sectionKeys = []string{
	prompt.SectionScore,
	prompt.SectionAnalysis,
	prompt.SectionTrend,
	prompt.SectionRecommendation,
}

// splitSections maps each known header to the trimmed body below it.
// Headers may carry markdown decoration ("## ANALYSE:", "**EMPFEHLUNG**").
func splitSections(text string) map[string]string {
	out := make(map[string]string)
	current := ""
	var body []string

	flush := func() {
		if current != "" {
			out[current] = strings.TrimSpace(strings.Join(body, "\n"))
		}
		body = body[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		if key, rest, ok := matchHeader(line); ok {
			flush()
			current = key
			if rest != "" {
				body = append(body, rest)
			}
			continue
		}
		if current != "" {
			body = append(body, line)
		}
	}
	flush()
	return out
}

func matchHeader(line string) (key, rest string, ok bool) {
	s := strings.TrimLeftFunc(line, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if s == "" {
		return "", "", false
	}

	head, tail, hasColon := strings.Cut(s, ":")
	head = strings.TrimRight(head, "*_ \t")
	tail = strings.TrimSpace(strings.TrimLeft(tail, "*_ \t"))
	if !hasColon && strings.TrimRight(strings.TrimSpace(s), "*_") != head {
		return "", "", false
	}

	upper := strings.ToUpper(head)
	shouting := upper == head
	// Mixed-case headers must stand alone, so "Trend: eher gut" stays body text.
	if !shouting && tail != "" {
		return "", "", false
	}

	for _, k := range sectionKeys {
		word, _, _ := strings.Cut(k, " ")
		if upper == k || upper == word || (shouting && strings.HasPrefix(upper, word)) {
			return k, tail, true
		}
	}
	return "", "", false
}

// structuredReply mirrors Schema.
type structuredReply struct {
	Points         *float64 `json:"points"`
	Percent        *float64 `json:"percent"`
	Grade          string   `json:"grade"`
	Analysis       string   `json:"analysis"`
	Trend          string   `json:"trend"`
	Recommendation string   `json:"recommendation"`
}

func parseStructured(text string) (Report, bool) {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if !strings.HasPrefix(trimmed, "{") {
		return Report{}, false
	}

	var reply structuredReply
	if err := json.Unmarshal([]byte(trimmed), &reply); err != nil {
		return Report{}, false
	}
	if reply.Points == nil || reply.Percent == nil || reply.Grade == "" || reply.Analysis == "" {
		return Report{}, false
	}

	r := Report{
		Score:          fmt.Sprintf("%s%% (%s)", formatNumber(*reply.Percent), strings.TrimSpace(reply.Grade)),
		Analysis:       text,
		Trend:          strings.TrimSpace(reply.Trend),
		Recommendation: strings.TrimSpace(reply.Recommendation),
		ScoreMatched:   true,
	}
	if r.Trend == "" {
		r.Trend = prompt.InsufficientData
	}
	if r.Recommendation == "" {
		r.Recommendation = FallbackScore
	}
	r.Rendered = Render(*reply.Points, *reply.Percent, reply.Grade, reply.Analysis, r.Trend, r.Recommendation)
	return r, true
}

// Render lays a structured reply out in the plain-text section format.
func Render(points, percent float64, grade, analysis, trend, recommendation string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:\nGesamt: %s / 50 = %s %% (%s)\n\n",
		prompt.SectionScore, formatNumber(points), formatNumber(percent), strings.TrimSpace(grade))
	fmt.Fprintf(&sb, "%s:\n%s\n\n", prompt.SectionAnalysis, strings.TrimSpace(analysis))
	fmt.Fprintf(&sb, "%s:\n%s\n\n", prompt.SectionTrend, trend)
	fmt.Fprintf(&sb, "%s:\n%s", prompt.SectionRecommendation, recommendation)
	return sb.String()
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// SchemaName identifies Schema in the response_format request.
const SchemaName = "sleep_report"

// Schema is the JSON schema requested from the LLM in structured mode.
func Schema() map[string]any {
	str := map[string]any{"type": "string"}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"points":         map[string]any{"type": "number", "minimum": 0, "maximum": 50},
			"percent":        map[string]any{"type": "number", "minimum": 0, "maximum": 100},
			"grade":          str,
			"analysis":       str,
			"trend":          str,
			"recommendation": str,
		},
		"required":             []string{"points", "percent", "grade", "analysis", "trend", "recommendation"},
		"additionalProperties": false,
	}
}
