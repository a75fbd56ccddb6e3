package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/mnemo/internal/observe"
	"github.com/felixgeelhaar/mnemo/internal/provider"
)

const (
	// maxExtractAttempts caps the model calls per extraction. The loop is a
	// plain counter on purpose: a recursive retry path here is how you end up
	// with an unbounded call chain when the guard sits on the wrong frame.
	maxExtractAttempts = 3

	extractTemperature = 0.2
	extractMaxTokens   = 200
)

const extractPrompt = "Extract key terms from the following text and return them as a list.\n" +
	"Enclose the list in triple backticks (```) and set it equal to keyterms=.\n\n" +
	"Text: %s\n\n" +
	"Key terms (format example):\n" +
	"```\nkeyterms = [\"term1\", \"term2\", \"term3\"]\n```\n"

const extractRetryPrompt = "Your previous response was not in the correct format. " +
	"Please provide a list of key terms extracted from the following text. " +
	"Enclose the list in triple backticks (```) and set it equal to keyterms=.\n\n" +
	"Text: %s\n\n" +
	"Correct format example:\n" +
	"```\nkeyterms = [\"term1\", \"term2\", \"term3\"]\n```\n"

// Extractor derives a small set of salient terms from an utterance by asking a
// language model for a fenced list literal and parsing it strictly.
type Extractor struct {
	provider provider.Provider
	obs      *observe.Observer
}

func NewExtractor(p provider.Provider, obs *observe.Observer) *Extractor {
	return &Extractor{provider: p, obs: obs}
}

// Extract returns the key terms for text. It never fails upward: after
// maxExtractAttempts malformed responses it returns an empty list, since
// retrieval still works (degraded) without terms. Terms are kept as-is, no
// casing or stemming normalization.
func (e *Extractor) Extract(ctx context.Context, text string) []string {
	ctx, span := e.obs.StartSpan(ctx, "memory.extract")
	defer span.End()

	for attempt := 1; attempt <= maxExtractAttempts; attempt++ {
		prompt := fmt.Sprintf(extractPrompt, text)
		if attempt > 1 {
			prompt = fmt.Sprintf(extractRetryPrompt, text)
		}

		resp, err := e.provider.Complete(ctx, provider.Request{
			Prompt:      prompt,
			Temperature: extractTemperature,
			MaxTokens:   extractMaxTokens,
			NumChoices:  1,
		})
		if err != nil {
			e.obs.Log().Warn().Err(err).Int("attempt", attempt).Msg("key term extraction call failed")
			continue
		}
		if len(resp.Choices) == 0 {
			e.obs.Log().Warn().Int("attempt", attempt).Msg("key term extraction returned no choices")
			continue
		}

		raw := strings.TrimSpace(resp.Choices[0].Text)
		if terms, ok := termsFromResponse(raw); ok {
			return terms
		}
		e.obs.Log().Warn().Int("attempt", attempt).Str("response", raw).Msg("key term extraction returned malformed list")
	}

	e.obs.Log().Error().Int("attempts", maxExtractAttempts).Msg("key term extraction failed, continuing without terms")
	return []string{}
}

// termsFromResponse tries the fenced code block first, then the raw response.
func termsFromResponse(raw string) ([]string, bool) {
	if inner, ok := fencedBlock(raw); ok {
		if terms, err := ParseTermList(inner); err == nil {
			return terms, true
		}
	}
	if terms, err := ParseTermList(raw); err == nil {
		return terms, true
	}
	return nil, false
}

// fencedBlock returns the text between the first and last ``` markers.
func fencedBlock(s string) (string, bool) {
	start := strings.Index(s, "```")
	end := strings.LastIndex(s, "```")
	if start == -1 || end <= start {
		return "", false
	}
	return strings.TrimSpace(s[start+3 : end]), true
}
