// Package langfuse is a small HTTP client for Langfuse: trace and score
// ingestion, prompt management and a health check. A client built without
// credentials is a no-op, so callers never branch on configuration.
package langfuse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/blaisecz/sleep-coach/pkg/logger"
	"github.com/google/uuid"
)

// asyncTimeout is the maximum time to wait for async Langfuse API calls.
const asyncTimeout = 5 * time.Second

// maxPendingErrors bounds the async errors kept for the next Flush.
const maxPendingErrors = 16

// Client is the interface for Langfuse operations.
type Client interface {
	// IsEnabled returns true if Langfuse is configured and enabled.
	IsEnabled() bool
	// CreateTrace queues a trace and returns its ID.
	CreateTrace(ctx context.Context, in TraceInput) (string, error)
	// CreateScore queues a score for an existing trace.
	CreateScore(ctx context.Context, in ScoreInput) error
	// Flush waits for queued sends and returns the errors they produced.
	Flush(ctx context.Context) error
}

// TraceInput contains the data for creating a trace.
type TraceInput struct {
	ID        string // generated when empty
	SessionID string
	Name      string
	Input     any
	Output    any
	Tags      []string
	Metadata  map[string]any
}

// ScoreInput contains the data for creating a score.
type ScoreInput struct {
	TraceID string
	Name    string
	Value   float64
	Comment string
}

// Config holds Langfuse client configuration.
type Config struct {
	BaseURL     string
	PublicKey   string
	SecretKey   string
	Environment string
}

// Enabled reports whether all credentials are present.
func (c Config) Enabled() bool {
	return c.BaseURL != "" && c.PublicKey != "" && c.SecretKey != ""
}

type client struct {
	cfg        Config
	enabled    bool
	httpClient *http.Client
	log        *logger.Logger

	wg   sync.WaitGroup
	mu   sync.Mutex
	errs []error
}

// NewClient creates a new Langfuse client.
// If baseURL or keys are empty, returns a disabled no-op client.
func NewClient(cfg Config, log *logger.Logger) Client {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("component", "langfuse")
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	enabled := cfg.Enabled()
	switch {
	case enabled:
		log.Info("enabled", "base_url", cfg.BaseURL, "env", cfg.Environment)
	case cfg.BaseURL == "":
		log.Info("disabled: LANGFUSE_BASE_URL is empty")
	case cfg.PublicKey == "":
		log.Info("disabled: LANGFUSE_PUBLIC_KEY is empty")
	default:
		log.Info("disabled: LANGFUSE_SECRET_KEY is empty")
	}

	return &client{
		cfg:     cfg,
		enabled: enabled,
		log:     log,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *client) IsEnabled() bool {
	return c.enabled
}

func (c *client) CreateTrace(ctx context.Context, in TraceInput) (string, error) {
	if !c.enabled {
		return "", nil
	}

	traceID := in.ID
	if traceID == "" {
		traceID = uuid.New().String()
	}

	metadata := make(map[string]any, len(in.Metadata)+1)
	for k, v := range in.Metadata {
		metadata[k] = v
	}
	if c.cfg.Environment != "" {
		metadata["environment"] = c.cfg.Environment
	}

	c.dispatch(ingestionEvent{
		ID:        uuid.New().String(),
		Type:      "trace-create",
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Body: traceBody{
			ID:          traceID,
			Name:        in.Name,
			SessionID:   in.SessionID,
			Input:       in.Input,
			Output:      in.Output,
			Tags:        in.Tags,
			Metadata:    metadata,
			Environment: c.cfg.Environment,
		},
	})

	return traceID, nil
}

func (c *client) CreateScore(ctx context.Context, in ScoreInput) error {
	if !c.enabled {
		return nil
	}
	if in.TraceID == "" {
		return errors.New("langfuse: score without trace id")
	}

	c.dispatch(ingestionEvent{
		ID:        uuid.New().String(),
		Type:      "score-create",
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Body: scoreBody{
			ID:      uuid.New().String(),
			TraceID: in.TraceID,
			Name:    in.Name,
			Value:   in.Value,
			Comment: in.Comment,
		},
	})

	return nil
}

func (c *client) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err := errors.Join(c.errs...)
	c.errs = nil
	return err
}

// dispatch sends the event off the request path.
func (c *client) dispatch(event ingestionEvent) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), asyncTimeout)
		defer cancel()

		if err := c.sendBatch(ctx, []ingestionEvent{event}); err != nil {
			c.log.Warn("async send failed", "type", event.Type, "error", err)
			c.mu.Lock()
			if len(c.errs) < maxPendingErrors {
				c.errs = append(c.errs, fmt.Errorf("%s: %w", event.Type, err))
			}
			c.mu.Unlock()
		}
	}()
}

func (c *client) sendBatch(ctx context.Context, events []ingestionEvent) error {
	body, err := json.Marshal(batchPayload{Batch: events})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/public/ingestion", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.PublicKey, c.cfg.SecretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("ingestion failed with status %d", resp.StatusCode)
	}

	// 207 carries per-event errors
	if resp.StatusCode == http.StatusMultiStatus {
		var result ingestionResult
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&result); err == nil && len(result.Errors) > 0 {
			return fmt.Errorf("ingestion rejected event: %s", result.Errors[0].Message)
		}
	}
	return nil
}

// Health calls the public health endpoint and returns the server version.
func Health(ctx context.Context, cfg Config) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(cfg.BaseURL, "/")+"/api/public/health", nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	var health struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return "", fmt.Errorf("decode health: %w", err)
	}
	return health.Version, nil
}

// Internal types for HTTP API

type batchPayload struct {
	Batch []ingestionEvent `json:"batch"`
}

type ingestionEvent struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Body      any    `json:"body"`
}

type ingestionResult struct {
	Errors []struct {
		ID      string `json:"id"`
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"errors"`
}

type traceBody struct {
	ID          string         `json:"id"`
	Name        string         `json:"name,omitempty"`
	SessionID   string         `json:"sessionId,omitempty"`
	Input       any            `json:"input,omitempty"`
	Output      any            `json:"output,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Environment string         `json:"environment,omitempty"`
}

type scoreBody struct {
	ID      string  `json:"id"`
	TraceID string  `json:"traceId"`
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Comment string  `json:"comment,omitempty"`
}
