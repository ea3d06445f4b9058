package domain

// Feedback is a user rating of an earlier analysis, linked by trace id.
// @Description Rating for a previous sleep report.
type Feedback struct {
	// Trace ID from the analysis response
	TraceID string `json:"trace_id" validate:"required,max=128" example:"4bf92f3577b34da6a3ce929d0e0e4736"`
	// Rating score (1-5)
	Score int `json:"score" validate:"min=1,max=5" example:"4" minimum:"1" maximum:"5"`
	// Optional comment
	Comment string `json:"comment,omitempty" validate:"max=500" example:"Sehr hilfreich!"`
}
