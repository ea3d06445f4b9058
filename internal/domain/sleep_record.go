package domain

import "time"

// Duration is an hours + minutes pair as entered in the form.
// @Description Duration split into hours and minutes.
type Duration struct {
	Hours   int `json:"hours" example:"7"`
	Minutes int `json:"minutes" example:"30"`
}

// TotalMinutes returns the duration in minutes.
func (d *Duration) TotalMinutes() int {
	if d == nil {
		return 0
	}
	return d.Hours*60 + d.Minutes
}

// IsZero reports whether the duration was left at 0h 0min.
func (d *Duration) IsZero() bool {
	return d == nil || (d.Hours == 0 && d.Minutes == 0)
}

// AwakeTime is the time spent awake during the night.
type AwakeTime struct {
	Minutes int `json:"minutes" example:"5"`
}

// TimeSpan is the bedtime window in HH:MM.
// @Description Sleep window, both ends in HH:MM.
type TimeSpan struct {
	From string `json:"from" example:"22:00"`
	To   string `json:"to" example:"05:30"`
}

// SleepRecord is one night of manually entered sleep-phase measurements.
// Blocks that were absent from the request stay nil so the validator can
// report them; everything that is present has already been clamped.
// @Description Sleep measurements for a single night.
type SleepRecord struct {
	// Calendar date (YYYY-MM-DD)
	Date string `json:"date" validate:"required" example:"2024-12-02"`
	// Total sleep, hours 0-24
	TotalSleep *Duration `json:"totalSleep" validate:"required"`
	// Minutes awake, 0-480
	Awake AwakeTime `json:"awake"`
	// REM sleep, hours 0-12
	REM *Duration `json:"rem" validate:"required"`
	// Light ("Kern") sleep, hours 0-12
	Light *Duration `json:"light" validate:"required"`
	// Deep ("Tief") sleep, hours 0-12
	Deep *Duration `json:"deep" validate:"required"`
	// Bedtime window
	SleepTime *TimeSpan `json:"sleepTime" validate:"required"`
	// Optional free-text notes (max 500 characters)
	Notes string `json:"notes,omitempty" example:"Spät Kaffee getrunken"`
}

// AnalysisResult is the successful response of POST /api/analyze.
// @Description LLM sleep report.
type AnalysisResult struct {
	Success        bool      `json:"success" example:"true"`
	Message        string    `json:"message" example:"Analyse erfolgreich erstellt"`
	Timestamp      time.Time `json:"timestamp" example:"2024-12-02T06:00:00Z"`
	Score          string    `json:"score" example:"76% (Gut)"`
	Analysis       string    `json:"analysis"`
	Trend          string    `json:"trend"`
	Recommendation string    `json:"recommendation"`
	// Sectioned report rebuilt from a structured reply
	Formatted string `json:"formatted,omitempty"`
	// Trace ID for feedback (only present when Langfuse is enabled)
	TraceID string `json:"trace_id,omitempty" example:"4bf92f3577b34da6a3ce929d0e0e4736"`
}
