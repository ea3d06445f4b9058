package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blaisecz/sleep-coach/internal/config"
	"github.com/blaisecz/sleep-coach/internal/langfuse"
	"github.com/spf13/cobra"
)

func newLangfuseCheckCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "langfuse-check",
		Short: "Verify Langfuse connectivity by sending a test trace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			return checkLangfuse(ctx, cmd, langfuse.Config{
				BaseURL:     cfg.LangfuseBaseURL,
				PublicKey:   cfg.LangfusePublicKey,
				SecretKey:   cfg.LangfuseSecretKey,
				Environment: cfg.LangfuseEnv,
			})
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "overall timeout")
	return cmd
}

func checkLangfuse(ctx context.Context, cmd *cobra.Command, cfg langfuse.Config) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== Langfuse Connection Test ===")
	fmt.Fprintf(out, "Base URL:    %s\n", cfg.BaseURL)
	fmt.Fprintf(out, "Public Key:  %s\n", maskKey(cfg.PublicKey))
	fmt.Fprintf(out, "Secret Key:  %s\n", maskKey(cfg.SecretKey))
	fmt.Fprintf(out, "Environment: %s\n\n", cfg.Environment)

	if !cfg.Enabled() {
		return errors.New("langfuse is disabled: set LANGFUSE_BASE_URL, LANGFUSE_PUBLIC_KEY and LANGFUSE_SECRET_KEY")
	}

	version, err := langfuse.Health(ctx, cfg)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	fmt.Fprintf(out, "Server version: %s\n", version)

	client := langfuse.NewClient(cfg, nil)
	traceID, err := client.CreateTrace(ctx, langfuse.TraceInput{
		Name: "langfuse-check",
		Input: map[string]any{
			"message": "Hello from sleep-coach langfuse-check",
			"time":    time.Now().Format(time.RFC3339),
		},
		Output: map[string]any{"status": "success"},
		Tags:   []string{"test", "manual"},
	})
	if err != nil {
		return fmt.Errorf("create trace: %w", err)
	}
	if err := client.Flush(ctx); err != nil {
		return fmt.Errorf("send trace: %w", err)
	}

	fmt.Fprintln(out, "Test trace created")
	fmt.Fprintf(out, "  Trace ID: %s\n", traceID)
	fmt.Fprintf(out, "  View at:  %s/trace/%s\n", cfg.BaseURL, traceID)
	return nil
}

func maskKey(key string) string {
	if len(key) < 8 {
		if key == "" {
			return "(empty)"
		}
		return "***"
	}
	return key[:8] + "..."
}
