package service

import (
	"context"
	"sync"

	"github.com/blaisecz/sleep-coach/internal/langfuse"
	"github.com/blaisecz/sleep-coach/internal/llm"
)

// mockCompleter is a mock implementation of llm.Completer
type mockCompleter struct {
	sendFunc func(ctx context.Context, credential, systemPrompt, userPrompt string) llm.Result

	mu    sync.Mutex
	calls int
}

func (m *mockCompleter) SendChatCompletion(ctx context.Context, credential, systemPrompt, userPrompt string) llm.Result {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.sendFunc != nil {
		return m.sendFunc(ctx, credential, systemPrompt, userPrompt)
	}
	return llm.Result{Success: true, Content: "Gesamt: 38 / 50 = 76 % (Gut)", StatusCode: 200}
}

func (m *mockCompleter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockLangfuseClient records traces and scores.
type mockLangfuseClient struct {
	enabled bool

	mu     sync.Mutex
	traces []langfuse.TraceInput
	scores []langfuse.ScoreInput
}

func (m *mockLangfuseClient) IsEnabled() bool { return m.enabled }

func (m *mockLangfuseClient) CreateTrace(ctx context.Context, in langfuse.TraceInput) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.traces = append(m.traces, in)
	if !m.enabled {
		return "", nil
	}
	if in.ID != "" {
		return in.ID, nil
	}
	return "lf-trace-1", nil
}

func (m *mockLangfuseClient) CreateScore(ctx context.Context, in langfuse.ScoreInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores = append(m.scores, in)
	return nil
}

func (m *mockLangfuseClient) Flush(ctx context.Context) error { return nil }
