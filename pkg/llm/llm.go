// Package llm wraps a text generation model.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultModel = "gemini-2.5-flash"

var ErrNoText = errors.New("no text content in model response")

// Provider generates text from a prompt.
type Provider interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	Close() error
}

type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiProvider(ctx context.Context, apiKey, modelName string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if modelName == "" {
		modelName = DefaultModel
	}
	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.3)

	return &GeminiProvider{client: client, model: model}, nil
}

func (g *GeminiProvider) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrNoText
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt), nil
		}
	}
	return "", ErrNoText
}

func (g *GeminiProvider) Close() error {
	return g.client.Close()
}
