// Package memory turns free-form chat text into a durable, similarity-searchable
// history and reconstructs the context relevant to a new turn. Ingestion
// extracts key terms from each utterance and appends the turn to a vector
// index; retrieval runs a two-stage, query-expanding search over that index.
package memory

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mnemo/internal/observe"
	"github.com/felixgeelhaar/mnemo/internal/provider"
	"github.com/felixgeelhaar/mnemo/internal/vectorindex"
)

// Role attributes an utterance to one side of the conversation.
type Role string

const (
	RoleHuman     Role = "Human"
	RoleAssistant Role = "Assistant"
)

// Turn is one role-attributed utterance.
type Turn struct {
	Role    Role
	Content string
}

// Target identifies where a conversation's turns live in the similarity index.
type Target struct {
	Index      vectorindex.Index
	Collection string
	EmbedModel string
}

// DefaultLimit is the number of index results requested per retrieval stage.
const DefaultLimit = 50

// Recorder is the upward interface to the chat driver: it owns the
// extract-then-ingest path and the retrieve-then-render path.
type Recorder struct {
	extractor *Extractor
	store     *Store
	retriever *Retriever
}

func NewRecorder(p provider.Provider, target Target, obs *observe.Observer) *Recorder {
	return &Recorder{
		extractor: NewExtractor(p, obs),
		store:     NewStore(target, obs),
		retriever: NewRetriever(target, obs),
	}
}

// Ingest extracts key terms from text and appends the turn to the index.
// Extraction failures degrade to an empty term list; index failures are hard
// errors and the turn must be considered not recorded.
func (r *Recorder) Ingest(ctx context.Context, role Role, text string) ([]string, error) {
	terms := r.extractor.Extract(ctx, text)
	if err := r.store.Add(ctx, role, text, terms); err != nil {
		return nil, fmt.Errorf("record %s turn: %w", role, err)
	}
	return terms, nil
}

// RetrieveContext reconstructs the conversation context relevant to the given
// terms and renders it as a prompt-ready block.
func (r *Recorder) RetrieveContext(ctx context.Context, terms []string, limit int) (string, error) {
	turns, err := r.retriever.Context(ctx, terms, limit)
	if err != nil {
		return "", err
	}
	return Render(turns), nil
}
