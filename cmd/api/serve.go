package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blaisecz/sleep-coach/internal/api"
	"github.com/blaisecz/sleep-coach/internal/api/handler"
	"github.com/blaisecz/sleep-coach/internal/config"
	"github.com/blaisecz/sleep-coach/internal/langfuse"
	"github.com/blaisecz/sleep-coach/internal/llm"
	"github.com/blaisecz/sleep-coach/internal/metrics"
	"github.com/blaisecz/sleep-coach/internal/prompt"
	"github.com/blaisecz/sleep-coach/internal/ratelimit"
	"github.com/blaisecz/sleep-coach/internal/report"
	"github.com/blaisecz/sleep-coach/internal/sanitize"
	"github.com/blaisecz/sleep-coach/internal/service"
	"github.com/blaisecz/sleep-coach/internal/telemetry"
	"github.com/blaisecz/sleep-coach/internal/validation"
	"github.com/blaisecz/sleep-coach/pkg/logger"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg, serviceName)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}

	m := metrics.New()

	store, closeStore, err := newRateLimitStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()
	limiter := ratelimit.NewLimiter(store, cfg.RateLimitMax, cfg.RateLimitWindow())

	lfCfg := langfuse.Config{
		BaseURL:     cfg.LangfuseBaseURL,
		PublicKey:   cfg.LangfusePublicKey,
		SecretKey:   cfg.LangfuseSecretKey,
		Environment: cfg.LangfuseEnv,
	}
	langfuseClient := langfuse.NewClient(lfCfg, log)

	if !cfg.LLMConfigured() {
		log.Warn("OPENAI_API_KEY not configured, /api/analyze will answer CONFIGURATION_ERROR")
	}
	gateway := llm.NewGateway(llm.Config{
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.OpenAIModel,
		MaxTokens:   cfg.OpenAIMaxTokens,
		Temperature: cfg.OpenAITemperature,
		Timeout:     cfg.OpenAITimeout(),
		Structured:  cfg.OpenAIStructuredOutput,
		SchemaName:  report.SchemaName,
		Schema:      report.Schema(),
	}, m, log)

	analysisService := service.NewAnalysisService(
		service.AnalysisConfig{Credential: cfg.OpenAIAPIKey, Model: gateway.Model()},
		sanitize.New(),
		validation.NewValidator(),
		newPromptBuilder(ctx, cfg, lfCfg, log),
		gateway,
		langfuseClient,
		m,
		log,
	)

	router := api.NewRouter(
		handler.NewAnalysisHandler(analysisService, log, cfg.IsDevelopment()),
		handler.NewFeedbackHandler(analysisService, log),
		limiter,
		m,
		log,
		api.Options{
			AllowedOrigins: cfg.AllowedOrigins(),
			TrustProxy:     cfg.TrustProxy,
			ExposeDetail:   cfg.IsDevelopment(),
		},
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.OpenAITimeout() + 10*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", srv.Addr, "model", gateway.Model(), "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}
	if err := langfuseClient.Flush(shutdownCtx); err != nil {
		log.Warn("langfuse flush", "error", err)
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Warn("tracer shutdown", "error", err)
	}
	return nil
}

// newRateLimitStore uses Redis when REDIS_ADDR is set so several replicas
// share one budget per client.
func newRateLimitStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (ratelimit.Store, func(), error) {
	if cfg.RedisAddr == "" {
		log.Info("rate limiter using in-memory store", "limit", cfg.RateLimitMax, "window", cfg.RateLimitWindow())
		return ratelimit.NewMemoryStore(), func() {}, nil
	}

	rdb, err := ratelimit.NewRedisClient(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("connect rate limit store: %w", err)
	}
	log.Info("rate limiter using redis", "addr", cfg.RedisAddr, "limit", cfg.RateLimitMax, "window", cfg.RateLimitWindow())
	return ratelimit.NewRedisStore(rdb), func() { _ = rdb.Close() }, nil
}

// newPromptBuilder applies the Langfuse-managed system prompt when one can be
// loaded and keeps the built-in prompt otherwise.
func newPromptBuilder(ctx context.Context, cfg *config.Config, lfCfg langfuse.Config, log *logger.Logger) *prompt.Builder {
	opts := []prompt.Option{prompt.WithStructuredOutput(cfg.OpenAIStructuredOutput)}

	if cfg.LangfusePromptName == "" && cfg.PromptCachePath == "" {
		return prompt.NewBuilder(opts...)
	}

	loader := langfuse.NewPromptLoader(langfuse.PromptLoaderConfig{
		Config:      lfCfg,
		PromptName:  cfg.LangfusePromptName,
		PromptLabel: cfg.LangfusePromptLabel,
		CachePath:   cfg.PromptCachePath,
	}, log)

	system, source, err := loader.Load(ctx)
	if err != nil {
		log.Warn("using built-in system prompt", "error", err)
		return prompt.NewBuilder(opts...)
	}
	log.Info("using managed system prompt", "source", source, "prompt", cfg.LangfusePromptName)
	return prompt.NewBuilder(append(opts, prompt.WithSystemOverride(system))...)
}
