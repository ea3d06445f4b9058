// Package sanitize coerces untrusted form input into a bounded SleepRecord.
//
// Nothing in this package returns an error: malformed leaf values are
// clamped or replaced by defaults. The only "failure" is a nil record when
// the payload is not a JSON object at all.
package sanitize

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/blaisecz/sleep-coach/internal/domain"
)

const (
	DefaultMaxTextLength = 500

	MaxTotalHours   = 24
	MaxPhaseHours   = 12
	MaxMinutes      = 59
	MaxAwakeMinutes = 480

	// DefaultTime replaces any malformed HH:MM value.
	DefaultTime = "00:00"

	dateLayout = "2006-01-02"
)

// injectionPatterns strip phrasings that try to take over the system prompt.
// They run in order and are re-applied until nothing matches any more.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(?:all\s+)?(?:previous|prior|above)(?:\s+(?:instructions?|prompts?|rules?))?`),
	regexp.MustCompile(`(?i)disregard\s+(?:all\s+)?(?:previous|prior|above)(?:\s+(?:instructions?|prompts?|rules?))?`),
	regexp.MustCompile(`(?i)forget\s+(?:all|everything)(?:\s+(?:previous|prior|above))?(?:\s+(?:instructions?|rules?))?`),
	regexp.MustCompile(`(?i)new\s+instructions?`),
	regexp.MustCompile(`(?i)system\s+prompt`),
	regexp.MustCompile(`(?i)act\s+as`),
	regexp.MustCompile(`(?i)override`),
	regexp.MustCompile(`(?i)you\s+are\s+(?:now|a)\b`),
	regexp.MustCompile(`(?i)pretend\s+(?:to|you)`),
}

var (
	// 0x00-0x08, 0x0B-0x0C, 0x0E-0x1F and DEL; tab, LF and CR survive.
	controlChars = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)

	timePattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):([0-5][0-9])$`)
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	leadingInt  = regexp.MustCompile(`^\s*([+-]?\d+)`)
)

// Sanitizer turns a decoded JSON body into a SleepRecord.
type Sanitizer struct {
	now           func() time.Time
	maxTextLength int
}

// Option configures a Sanitizer.
type Option func(*Sanitizer)

// WithClock sets the clock used for the default date.
func WithClock(now func() time.Time) Option {
	return func(s *Sanitizer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMaxTextLength caps free-text fields at n characters.
func WithMaxTextLength(n int) Option {
	return func(s *Sanitizer) {
		if n > 0 {
			s.maxTextLength = n
		}
	}
}

func New(opts ...Option) *Sanitizer {
	s := &Sanitizer{
		now:           time.Now,
		maxTextLength: DefaultMaxTextLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record sanitizes a decoded JSON value. It returns nil only when raw is not
// an object. Duration and time-span blocks that are missing (or not objects)
// stay nil so the validator can report them by name.
func (s *Sanitizer) Record(raw any) *domain.SleepRecord {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil
	}

	return &domain.SleepRecord{
		Date:       s.Date(m["date"]),
		TotalSleep: duration(m["totalSleep"], MaxTotalHours),
		Awake:      domain.AwakeTime{Minutes: awakeMinutes(m["awake"])},
		REM:        duration(m["rem"], MaxPhaseHours),
		Light:      duration(m["light"], MaxPhaseHours),
		Deep:       duration(m["deep"], MaxPhaseHours),
		SleepTime:  timeSpan(m["sleepTime"]),
		Notes:      s.Text(m["notes"]),
	}
}

// Text removes prompt-injection phrases and control characters, trims, and
// truncates to the configured length. Non-strings become "".
func (s *Sanitizer) Text(v any) string {
	str, ok := v.(string)
	if !ok {
		return ""
	}

	str = strings.ToValidUTF8(str, "")
	// Every step only ever shortens the string, so this terminates. Looping
	// catches phrases re-formed by an earlier removal.
	for {
		next := s.textPass(str)
		if next == str {
			return next
		}
		str = next
	}
}

func (s *Sanitizer) textPass(str string) string {
	for _, p := range injectionPatterns {
		str = p.ReplaceAllString(str, "")
	}
	str = controlChars.ReplaceAllString(str, "")
	str = strings.TrimSpace(str)
	if utf8.RuneCountInString(str) > s.maxTextLength {
		str = string([]rune(str)[:s.maxTextLength])
	}
	return str
}

// Date accepts YYYY-MM-DD strings naming a real calendar day. Anything else
// becomes today's date on the server clock.
func (s *Sanitizer) Date(v any) string {
	if str, ok := v.(string); ok && datePattern.MatchString(str) {
		if _, err := time.Parse(dateLayout, str); err == nil {
			return str
		}
	}
	return s.now().Format(dateLayout)
}

// TimeOfDay accepts H:MM / HH:MM in 24h notation, else DefaultTime.
func TimeOfDay(v any) string {
	if str, ok := v.(string); ok && timePattern.MatchString(str) {
		return str
	}
	return DefaultTime
}

// Int coerces v to an integer clamped into [min, max]. Values that carry no
// number at all map to min.
func Int(v any, min, max int) int {
	n, ok := toInt(v)
	if !ok {
		return min
	}
	if n < int64(min) {
		return min
	}
	if n > int64(max) {
		return max
	}
	return int(n)
}

func toInt(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int64:
		return t, true
	case float64:
		return truncFloat(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
		f, err := t.Float64()
		if err != nil && !math.IsInf(f, 0) {
			return parseLeadingInt(t.String())
		}
		return truncFloat(f)
	case string:
		return parseLeadingInt(t)
	default:
		return 0, false
	}
}

func truncFloat(f float64) (int64, bool) {
	switch {
	case math.IsNaN(f):
		return 0, false
	case f >= math.MaxInt64:
		return math.MaxInt64, true
	case f <= math.MinInt64:
		return math.MinInt64, true
	default:
		return int64(f), true
	}
}

// parseLeadingInt reads an optional sign and digits from the start of s,
// ignoring whatever follows ("7.5h" -> 7).
func parseLeadingInt(s string) (int64, bool) {
	m := leadingInt.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		if strings.HasPrefix(m[1], "-") {
			return math.MinInt64, true
		}
		return math.MaxInt64, true
	}
	return n, true
}

func duration(v any, maxHours int) *domain.Duration {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return &domain.Duration{
		Hours:   Int(m["hours"], 0, maxHours),
		Minutes: Int(m["minutes"], 0, MaxMinutes),
	}
}

func awakeMinutes(v any) int {
	m, ok := v.(map[string]any)
	if !ok {
		return 0
	}
	return Int(m["minutes"], 0, MaxAwakeMinutes)
}

func timeSpan(v any) *domain.TimeSpan {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return &domain.TimeSpan{
		From: TimeOfDay(m["from"]),
		To:   TimeOfDay(m["to"]),
	}
}
