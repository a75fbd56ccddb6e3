// Package chat drives a conversation: every turn is recorded into memory and
// every reply is generated against the context retrieved for that turn.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/mnemo/internal/memory"
	"github.com/felixgeelhaar/mnemo/internal/observe"
	"github.com/felixgeelhaar/mnemo/internal/provider"
)

const (
	defaultTemperature = 0.4
	defaultMaxTokens   = 800
)

// Options tunes reply generation and context retrieval.
type Options struct {
	Persona      string
	Temperature  float32
	MaxTokens    int
	ContextLimit int
}

// Session glues the provider and the memory recorder for one conversation.
type Session struct {
	provider provider.Provider
	recorder *memory.Recorder
	obs      *observe.Observer
	opts     Options
}

func NewSession(p provider.Provider, rec *memory.Recorder, obs *observe.Observer, opts Options) *Session {
	if opts.Temperature == 0 {
		opts.Temperature = defaultTemperature
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.ContextLimit <= 0 {
		opts.ContextLimit = memory.DefaultLimit
	}
	return &Session{provider: p, recorder: rec, obs: obs, opts: opts}
}

// Turn records the user's utterance, retrieves context for it, generates the
// assistant reply, and records that reply symmetrically. The user turn is
// always ingested before the reply so timestamps reflect conversation order.
func (s *Session) Turn(ctx context.Context, userText string) (string, error) {
	ctx, span := s.obs.StartSpan(ctx, "chat.turn")
	defer span.End()

	terms, err := s.recorder.Ingest(ctx, memory.RoleHuman, userText)
	if err != nil {
		return "", err
	}

	contextBlock, err := s.recorder.RetrieveContext(ctx, terms, s.opts.ContextLimit)
	if err != nil {
		return "", fmt.Errorf("retrieve context: %w", err)
	}

	resp, err := s.provider.Complete(ctx, provider.Request{
		Prompt:      s.buildPrompt(contextBlock),
		Temperature: s.opts.Temperature,
		MaxTokens:   s.opts.MaxTokens,
		NumChoices:  1,
	})
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generate reply: no choices returned")
	}
	reply := strings.TrimSpace(resp.Choices[0].Text)

	if _, err := s.recorder.Ingest(ctx, memory.RoleAssistant, reply); err != nil {
		return "", err
	}
	return reply, nil
}

func (s *Session) buildPrompt(contextBlock string) string {
	var sb strings.Builder
	if s.opts.Persona != "" {
		sb.WriteString(s.opts.Persona)
		sb.WriteString("\n\n")
	}
	sb.WriteString(contextBlock)
	sb.WriteString("\n\nAssistant:")
	return sb.String()
}
