// Package llm sends one chat completion per analysis to an OpenAI-compatible
// endpoint. The gateway never returns a Go error: every outcome, including
// transport failures, is folded into a Result.
package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/blaisecz/sleep-coach/internal/metrics"
	"github.com/blaisecz/sleep-coach/pkg/logger"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultModel     = "gpt-4o-mini"
	DefaultMaxTokens = 2000
	DefaultTimeout   = 30 * time.Second
)

var (
	// ErrMissingCredential indicates SendChatCompletion was called without an API key.
	ErrMissingCredential = errors.New("missing API credential")
	// ErrEmptyReply indicates the provider answered without any message content.
	ErrEmptyReply = errors.New("empty reply from model")
)

// Result is the outcome of one chat completion. StatusCode is 0 when no
// HTTP response was received.
type Result struct {
	Success    bool
	Content    string
	Error      string
	StatusCode int
}

// Completer is implemented by Gateway.
type Completer interface {
	SendChatCompletion(ctx context.Context, credential, systemPrompt, userPrompt string) Result
}

// Config configures the Gateway. Zero Model, MaxTokens and Timeout fall back
// to the defaults above. Temperature is sent as given, so 0 means greedy
// decoding.
type Config struct {
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration

	// Structured requests a json_schema reply using SchemaName and Schema.
	Structured bool
	SchemaName string
	Schema     map[string]any
}

// Gateway implements Completer using openai-go.
type Gateway struct {
	client  openai.Client
	cfg     Config
	metrics *metrics.Metrics
	log     *logger.Logger
}

// NewGateway builds a gateway. Automatic retries are disabled; the caller
// decides whether a failed analysis is retried.
func NewGateway(cfg Config, m *metrics.Metrics, log *logger.Logger) *Gateway {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Nop()
	}

	opts := []option.RequestOption{
		option.WithRequestTimeout(cfg.Timeout),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Gateway{
		client:  openai.NewClient(opts...),
		cfg:     cfg,
		metrics: m,
		log:     log,
	}
}

// Model returns the configured model name.
func (g *Gateway) Model() string {
	return g.cfg.Model
}

// SendChatCompletion sends the system and user prompt as one request,
// authenticated with credential.
func (g *Gateway) SendChatCompletion(ctx context.Context, credential, systemPrompt, userPrompt string) Result {
	tracer := otel.Tracer("sleep-coach/llm")
	ctx, span := tracer.Start(ctx, "Gateway.SendChatCompletion",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("gen_ai.system", "openai"),
			attribute.String("gen_ai.request.model", g.cfg.Model),
			attribute.Int("gen_ai.request.max_tokens", g.cfg.MaxTokens),
			attribute.Float64("gen_ai.request.temperature", g.cfg.Temperature),
			attribute.Bool("llm.structured_output", g.cfg.Structured),
		),
	)
	defer span.End()

	start := time.Now()
	res := g.send(ctx, credential, systemPrompt, userPrompt, span)
	g.metrics.ObserveLLM(g.cfg.Model, res.Success, time.Since(start))

	span.SetAttributes(attribute.Int("http.response.status_code", res.StatusCode))
	if !res.Success {
		span.SetStatus(codes.Error, res.Error)
		g.log.Warn("chat completion failed",
			"model", g.cfg.Model,
			"status", res.StatusCode,
			"error", res.Error,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return res
}

func (g *Gateway) send(ctx context.Context, credential, systemPrompt, userPrompt string, span trace.Span) Result {
	if strings.TrimSpace(credential) == "" {
		return Result{Error: ErrMissingCredential.Error(), StatusCode: http.StatusInternalServerError}
	}

	params := openai.ChatCompletionNewParams{
		Model: g.cfg.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		MaxTokens:   openai.Int(int64(g.cfg.MaxTokens)),
		Temperature: openai.Float(g.cfg.Temperature),
	}
	if g.cfg.Structured && g.cfg.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   g.cfg.SchemaName,
					Schema: g.cfg.Schema,
					Strict: openai.Bool(true),
				},
			},
		}
	}

	resp, err := g.client.Chat.Completions.New(ctx, params, option.WithAPIKey(credential))
	if err != nil {
		return errorResult(err)
	}

	span.SetAttributes(
		attribute.String("gen_ai.response.model", resp.Model),
		attribute.Int64("gen_ai.usage.input_tokens", resp.Usage.PromptTokens),
		attribute.Int64("gen_ai.usage.output_tokens", resp.Usage.CompletionTokens),
	)

	if len(resp.Choices) == 0 {
		return Result{Error: ErrEmptyReply.Error() + ": no choices", StatusCode: http.StatusBadGateway}
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return Result{Error: ErrEmptyReply.Error(), StatusCode: http.StatusBadGateway}
	}

	return Result{Success: true, Content: content, StatusCode: http.StatusOK}
}

func errorResult(err error) Result {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		msg := apierr.Message
		if msg == "" {
			msg = http.StatusText(apierr.StatusCode)
		}
		return Result{Error: msg, StatusCode: apierr.StatusCode}
	}
	return Result{Error: err.Error(), StatusCode: 0}
}
