// In file: internal/llm/client.go

// Package llm contains the generation boundary of the chatbot: the Gateway
// interface the orchestrator calls, the Gemini-backed implementation, and a
// scripted client for tests.
package llm

import (
	"context"
	"fmt"
)

// Stages of a generation round trip, used to report which of the two calls
// failed. Summary generation failing is survivable (the full answer is still
// delivered); full generation failing is not.
const (
	StageFull    = "full"
	StageSummary = "summary"
)

// GenerationConfig holds the static sampling settings applied to every call.
// These come from config.yaml, never from user input.
type GenerationConfig struct {
	// The specific model to use (e.g., "gemini-2.5-flash").
	Model string `yaml:"model"`
	// Controls randomness. A pointer distinguishes an explicit 0.0 from
	// an unset value, which leaves the provider default in place.
	Temperature *float32 `yaml:"temperature"`
	// The maximum number of tokens to generate in a response.
	MaxTokens int `yaml:"max_output_tokens"`
}

// GenerationError wraps any failure from the model provider (rate limits,
// timeouts, malformed responses), tagged with the stage that failed.
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (%s): %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Gateway is the interface the orchestrator depends on. The two calls are
// deliberately independent: a summary is condensed from the already-produced
// full answer text, not fetched in the same round trip.
type Gateway interface {
	// GenerateFull produces a complete answer to the question. The text is
	// used verbatim as the displayed answer.
	GenerateFull(ctx context.Context, question string) (string, error)

	// GenerateSummary condenses a full answer into one to three sentences
	// suitable for serving on a repeat of the same question.
	GenerateSummary(ctx context.Context, fullAnswer string) (string, error)
}
