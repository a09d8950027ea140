// Package ai wraps the generative-language backend behind a small Completer
// interface and builds the prompts sent to it.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-1.5-flash-latest"

// ErrEmptyResponse is returned when the backend answers without any text.
var ErrEmptyResponse = errors.New("model returned no text")

// Completer turns a prompt into free-form model text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type GeminiConfig struct {
	APIKey          string
	Model           string
	BaseURL         string
	Temperature     float32
	MaxOutputTokens int32
}

type GeminiClient struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("google API key is not defined")
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	gc := &genai.GenerateContentConfig{}
	if cfg.Temperature > 0 {
		gc.Temperature = genai.Ptr(cfg.Temperature)
	}
	if cfg.MaxOutputTokens > 0 {
		gc.MaxOutputTokens = cfg.MaxOutputTokens
	}

	return &GeminiClient{
		client: client,
		model:  cfg.Model,
		config: gc,
	}, nil
}

func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), c.config)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}

func (c *GeminiClient) Model() string {
	return c.model
}

// CompleterFunc adapts a plain function to Completer.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
