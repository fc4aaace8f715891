// In file: internal/llm/gemini.go
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// callTimeout bounds every provider round trip so a stalled generation
// surfaces as a GenerationError instead of hanging the request.
const callTimeout = 60 * time.Second

const summaryInstruction = "Condense the following answer into one to three short sentences. " +
	"Keep only the essential facts, no preamble:\n\n"

// GeminiGateway is the production Gateway backed by Google's Gemini models.
type GeminiGateway struct {
	model *genai.GenerativeModel
}

var _ Gateway = (*GeminiGateway)(nil)

// NewGeminiGateway creates the client once per process; main owns its
// lifetime and the orchestrator receives it by injection.
func NewGeminiGateway(ctx context.Context, apiKey string, cfg GenerationConfig) (*GeminiGateway, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key cannot be empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	if cfg.Temperature != nil {
		model.SetTemperature(*cfg.Temperature)
	}
	if cfg.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(cfg.MaxTokens))
	} else {
		model.SetMaxOutputTokens(4096)
	}
	return &GeminiGateway{model: model}, nil
}

func (g *GeminiGateway) GenerateFull(ctx context.Context, question string) (string, error) {
	text, err := g.generate(ctx, question)
	if err != nil {
		return "", &GenerationError{Stage: StageFull, Err: err}
	}
	return text, nil
}

func (g *GeminiGateway) GenerateSummary(ctx context.Context, fullAnswer string) (string, error) {
	text, err := g.generate(ctx, summaryInstruction+fullAnswer)
	if err != nil {
		return "", &GenerationError{Stage: StageSummary, Err: err}
	}
	return text, nil
}

func (g *GeminiGateway) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}
	return flattenGeminiResponse(resp)
}

// flattenGeminiResponse extracts the text parts of the first candidate.
func flattenGeminiResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no content returned from Gemini")
	}
	var contentBuilder strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			contentBuilder.WriteString(string(txt))
		}
	}
	text := strings.TrimSpace(contentBuilder.String())
	if text == "" {
		return "", errors.New("gemini returned an empty answer")
	}
	return text, nil
}
