package provider

import (
	"context"
)

// Request is a single completion call to a language-model endpoint.
type Request struct {
	Prompt      string  `json:"prompt"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	NumChoices  int     `json:"num_choices"`
}

// Choice is one candidate completion.
type Choice struct {
	Text string `json:"text"`
}

// Response represents the output from the model.
type Response struct {
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Provider defines the interface for language-model inference endpoints.
type Provider interface {
	// Complete sends a prompt to the model and returns candidate completions.
	Complete(ctx context.Context, req Request) (*Response, error)

	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Name returns the provider identifier (e.g., "stub", "openai").
	Name() string
}
