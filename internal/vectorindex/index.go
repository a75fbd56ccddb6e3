// Package vectorindex abstracts the similarity index that stores and ranks
// conversation turns. Implementations embed text server-side (remote service)
// or via a provider (local sqlite index).
package vectorindex

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the index failed to serve an ingest or query call.
// Callers must not swallow it: a dropped turn corrupts later retrieval.
var ErrUnavailable = errors.New("vector index unavailable")

// Metadata is stored alongside every indexed document.
type Metadata struct {
	Role      string  `json:"role"`
	Timestamp float64 `json:"timestamp"`
	EntryID   string  `json:"entry_id"`
	KeyTerms  string  `json:"key_terms"` // JSON-encoded array of strings
}

// Result is one ranked entry returned by a query.
type Result struct {
	Text     string
	Score    float64
	Metadata Metadata
}

// Index defines the operations the memory core needs from a similarity index.
type Index interface {
	// EnsureCollection creates the named collection if it does not exist yet.
	EnsureCollection(ctx context.Context, collection, model string) error

	// Add indexes a document with its metadata.
	Add(ctx context.Context, collection, model, text string, meta Metadata) error

	// Query ranks stored documents against the query strings and returns up
	// to topK results. Metadata is populated only when includeMetadata is set.
	Query(ctx context.Context, collection, model string, queries []string, topK int, includeMetadata bool) ([]Result, error)
}

// Embedder computes a vector embedding for a text. provider.Provider satisfies it.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
