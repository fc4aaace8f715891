// In file: internal/llm/mock.go
package llm

import "context"

// MockGateway is a scripted Gateway for tests. Answers are derived from the
// input unless overridden, and call counts let tests assert that a cache hit
// skipped generation entirely.
type MockGateway struct {
	FullErr    error
	SummaryErr error

	// FullFn/SummaryFn override the default canned responses when set.
	FullFn    func(question string) string
	SummaryFn func(fullAnswer string) string

	FullCalls    int
	SummaryCalls int
}

var _ Gateway = (*MockGateway)(nil)

func (m *MockGateway) GenerateFull(_ context.Context, question string) (string, error) {
	m.FullCalls++
	if m.FullErr != nil {
		return "", &GenerationError{Stage: StageFull, Err: m.FullErr}
	}
	if m.FullFn != nil {
		return m.FullFn(question), nil
	}
	return "full answer to: " + question, nil
}

func (m *MockGateway) GenerateSummary(_ context.Context, fullAnswer string) (string, error) {
	m.SummaryCalls++
	if m.SummaryErr != nil {
		return "", &GenerationError{Stage: StageSummary, Err: m.SummaryErr}
	}
	if m.SummaryFn != nil {
		return m.SummaryFn(fullAnswer), nil
	}
	return "summary of: " + fullAnswer, nil
}
