package handler

import (
	"context"

	"github.com/blaisecz/sleep-coach/internal/domain"
	"github.com/blaisecz/sleep-coach/internal/prompt"
	"github.com/blaisecz/sleep-coach/internal/validation"
)

// MockAnalysisService is a mock implementation of AnalysisService
type MockAnalysisService struct {
	checkFunc    func() error
	analyzeFunc  func(ctx context.Context, raw any) (*domain.AnalysisResult, error)
	feedbackFunc func(ctx context.Context, in domain.Feedback) error

	analyzeCalls int
	feedback     []domain.Feedback
}

func (m *MockAnalysisService) CheckConfigured() error {
	if m.checkFunc != nil {
		return m.checkFunc()
	}
	return nil
}

func (m *MockAnalysisService) Analyze(ctx context.Context, raw any) (*domain.AnalysisResult, error) {
	m.analyzeCalls++
	if m.analyzeFunc != nil {
		return m.analyzeFunc(ctx, raw)
	}
	return &domain.AnalysisResult{Success: true, Score: "76% (Gut)"}, nil
}

func (m *MockAnalysisService) Preview(raw any) (*prompt.Prompt, validation.Result) {
	return nil, validation.Result{}
}

func (m *MockAnalysisService) SubmitFeedback(ctx context.Context, in domain.Feedback) error {
	m.feedback = append(m.feedback, in)
	if m.feedbackFunc != nil {
		return m.feedbackFunc(ctx, in)
	}
	return nil
}
