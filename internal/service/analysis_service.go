package service

import (
	"context"
	"strings"
	"time"

	"github.com/blaisecz/sleep-coach/internal/domain"
	"github.com/blaisecz/sleep-coach/internal/langfuse"
	"github.com/blaisecz/sleep-coach/internal/llm"
	"github.com/blaisecz/sleep-coach/internal/metrics"
	"github.com/blaisecz/sleep-coach/internal/prompt"
	"github.com/blaisecz/sleep-coach/internal/report"
	"github.com/blaisecz/sleep-coach/internal/sanitize"
	"github.com/blaisecz/sleep-coach/internal/telemetry"
	"github.com/blaisecz/sleep-coach/internal/validation"
	"github.com/blaisecz/sleep-coach/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	MessageSuccess = "Analyse erfolgreich erstellt"
	TraceName      = "sleep-analysis"
	FeedbackScore  = "user_feedback"
)

// AnalysisService turns one raw request body into a sleep report:
// sanitize, validate, build the prompt, call the LLM, parse the reply.
type AnalysisService interface {
	// CheckConfigured returns domain.ErrNotConfigured when no LLM credential is set.
	CheckConfigured() error
	// Analyze returns *domain.ValidationError for rejected input and
	// *domain.GatewayError when the LLM call fails.
	Analyze(ctx context.Context, raw any) (*domain.AnalysisResult, error)
	// Preview runs sanitize, validate and prompt building without calling the LLM.
	Preview(raw any) (*prompt.Prompt, validation.Result)
	// SubmitFeedback attaches a user rating to an earlier analysis trace.
	SubmitFeedback(ctx context.Context, in domain.Feedback) error
}

// AnalysisConfig holds the server-side credential and the model name
// reported to observability.
type AnalysisConfig struct {
	Credential string
	Model      string
}

type analysisService struct {
	cfg       AnalysisConfig
	sanitizer *sanitize.Sanitizer
	validator *validation.Validator
	builder   *prompt.Builder
	llm       llm.Completer
	langfuse  langfuse.Client
	metrics   *metrics.Metrics
	log       *logger.Logger
	now       func() time.Time
}

// NewAnalysisService creates a new AnalysisService.
func NewAnalysisService(
	cfg AnalysisConfig,
	sanitizer *sanitize.Sanitizer,
	validator *validation.Validator,
	builder *prompt.Builder,
	completer llm.Completer,
	langfuseClient langfuse.Client,
	m *metrics.Metrics,
	log *logger.Logger,
) AnalysisService {
	if log == nil {
		log = logger.Nop()
	}
	return &analysisService{
		cfg:       cfg,
		sanitizer: sanitizer,
		validator: validator,
		builder:   builder,
		llm:       completer,
		langfuse:  langfuseClient,
		metrics:   m,
		log:       log.With("service", "AnalysisService"),
		now:       time.Now,
	}
}

func (s *analysisService) CheckConfigured() error {
	if strings.TrimSpace(s.cfg.Credential) == "" {
		return domain.ErrNotConfigured
	}
	return nil
}

func (s *analysisService) Preview(raw any) (*prompt.Prompt, validation.Result) {
	rec := s.sanitizer.Record(raw)
	res := s.validator.Validate(rec)
	if !res.Valid {
		return nil, res
	}
	p := s.builder.Build(*rec)
	return &p, res
}

func (s *analysisService) Analyze(ctx context.Context, raw any) (*domain.AnalysisResult, error) {
	if err := s.CheckConfigured(); err != nil {
		return nil, err
	}

	tracer := otel.Tracer("sleep-coach/analysis")
	ctx, span := tracer.Start(ctx, "AnalysisService.Analyze")
	defer span.End()

	rec := s.sanitizer.Record(raw)
	res := s.validator.Validate(rec)
	if len(res.Warnings) > 0 {
		s.log.Warn("sleep record plausibility warnings", "warnings", res.Warnings)
		s.metrics.AddValidationWarnings(len(res.Warnings))
	}
	if !res.Valid {
		s.metrics.ObserveAnalysis(metrics.OutcomeValidation)
		span.SetAttributes(attribute.StringSlice("validation.errors", res.Errors))
		return nil, res.Err()
	}

	p := s.builder.Build(*rec)
	span.SetAttributes(
		attribute.String("prompt.version", prompt.PromptVersion),
		attribute.String("sleep.date", rec.Date),
		attribute.Int("validation.warnings", len(res.Warnings)),
	)

	out := s.llm.SendChatCompletion(ctx, s.cfg.Credential, p.System, p.User)
	traceID := telemetry.TraceID(ctx)

	if !out.Success {
		s.metrics.ObserveAnalysis(metrics.OutcomeLLMError)
		s.log.Error("llm call failed", "status", out.StatusCode, "detail", out.Error, "trace_id", traceID)
		s.trace(ctx, traceID, rec, res.Warnings, map[string]any{"error": out.Error, "status": out.StatusCode})
		return nil, &domain.GatewayError{StatusCode: out.StatusCode, Detail: out.Error}
	}

	var rep report.Report
	if s.builder.Structured() {
		rep = report.ParseStructured(out.Content)
	} else {
		rep = report.Parse(out.Content)
	}
	if rep.ScoreMatched {
		s.metrics.ObserveAnalysis(metrics.OutcomeSuccess)
	} else {
		s.metrics.ObserveAnalysis(metrics.OutcomeFallback)
		s.log.Warn("score line not found in llm reply", "trace_id", traceID, "reply_length", len(out.Content))
	}
	span.SetAttributes(
		attribute.String("report.score", rep.Score),
		attribute.Bool("report.score_matched", rep.ScoreMatched),
	)

	// Feedback needs a Langfuse trace, so the id is only handed out when one was recorded.
	if s.langfuse.IsEnabled() {
		if id := s.trace(ctx, traceID, rec, res.Warnings, map[string]any{"score": rep.Score, "analysis": rep.Analysis}); id != "" {
			traceID = id
		}
	} else {
		traceID = ""
	}

	return &domain.AnalysisResult{
		Success:        true,
		Message:        MessageSuccess,
		Timestamp:      s.now().UTC(),
		Score:          rep.Score,
		Analysis:       rep.Analysis,
		Trend:          rep.Trend,
		Recommendation: rep.Recommendation,
		Formatted:      rep.Rendered,
		TraceID:        traceID,
	}, nil
}

// trace records the analysis in Langfuse. It reuses the OpenTelemetry trace
// id when one exists so feedback scores land on the same trace.
func (s *analysisService) trace(ctx context.Context, traceID string, rec *domain.SleepRecord, warnings []string, output map[string]any) string {
	metadata := map[string]any{
		"model":          s.cfg.Model,
		"prompt_version": prompt.PromptVersion,
	}
	if len(warnings) > 0 {
		metadata["validation_warnings"] = warnings
	}

	id, err := s.langfuse.CreateTrace(ctx, langfuse.TraceInput{
		ID:       traceID,
		Name:     TraceName,
		Input:    rec,
		Output:   output,
		Tags:     []string{"sleep-coach"},
		Metadata: metadata,
	})
	if err != nil {
		s.log.Warn("langfuse trace failed", "error", err)
	}
	return id
}

func (s *analysisService) SubmitFeedback(ctx context.Context, in domain.Feedback) error {
	return s.langfuse.CreateScore(ctx, langfuse.ScoreInput{
		TraceID: in.TraceID,
		Name:    FeedbackScore,
		Value:   float64(in.Score),
		Comment: in.Comment,
	})
}
