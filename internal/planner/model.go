package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.5-flash"

// Model generates free text from a prompt.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenAIModel calls Google's generative language API.
type GenAIModel struct {
	client *genai.Client
	model  string
}

// NewGenAIModel creates a model client. An empty API key yields
// ErrModelUnavailable so the server can still start without one.
func NewGenAIModel(ctx context.Context, apiKey, model string) (*GenAIModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: missing api key", ErrModelUnavailable)
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &GenAIModel{client: client, model: model}, nil
}

// Generate sends the prompt and returns the concatenated text parts.
func (m *GenAIModel) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := m.client.Models.GenerateContent(ctx, m.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("empty model response")
	}
	return text, nil
}
