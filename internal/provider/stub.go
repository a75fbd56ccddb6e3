package provider

import (
	"context"
	"hash/fnv"
	"strings"
)

// StubProvider is a scripted provider for testing. Completions are served from
// Responses in order; once exhausted, Fallback (or an empty choice) is returned.
type StubProvider struct {
	Responses []Response
	Fallback  string
	Err       error

	// Requests records every completion call for assertions.
	Requests []Request
}

func NewStubProvider(texts ...string) *StubProvider {
	s := &StubProvider{}
	for _, t := range texts {
		s.Responses = append(s.Responses, Response{
			Choices: []Choice{{Text: t}},
			Usage:   Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		})
	}
	return s
}

func (m *StubProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.Requests = append(m.Requests, req)

	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Responses) == 0 {
		return &Response{Choices: []Choice{{Text: m.Fallback}}}, nil
	}

	resp := m.Responses[0]
	m.Responses = m.Responses[1:]
	return &resp, nil
}

// Embed returns a deterministic pseudo-embedding so that identical texts map to
// identical vectors and similar word sets land near each other.
func (m *StubProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, 8)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		vec[h.Sum32()%8]++
	}
	return vec, nil
}

func (m *StubProvider) Name() string {
	return "stub"
}
