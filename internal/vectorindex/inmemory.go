package vectorindex

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// InMemory is a process-local index for ephemeral sessions and tests. It ranks
// by term overlap between the query and the document, which is a crude stand-in
// for semantic similarity but preserves the interface contract: an empty query
// yields the neutral (insertion-order) ranking.
type InMemory struct {
	mu          sync.Mutex
	collections map[string][]inMemoryEntry

	// Optional fault injection for tests.
	AddErr   error
	QueryErr error
}

type inMemoryEntry struct {
	text string
	meta Metadata
}

func NewInMemory() *InMemory {
	return &InMemory{collections: make(map[string][]inMemoryEntry)}
}

func (m *InMemory) EnsureCollection(ctx context.Context, collection, model string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[collection]; !ok {
		m.collections[collection] = nil
	}
	return nil
}

func (m *InMemory) Add(ctx context.Context, collection, model, text string, meta Metadata) error {
	if m.AddErr != nil {
		return m.AddErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[collection] = append(m.collections[collection], inMemoryEntry{text: text, meta: meta})
	return nil
}

func (m *InMemory) Query(ctx context.Context, collection, model string, queries []string, topK int, includeMetadata bool) ([]Result, error) {
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	terms := strings.Fields(strings.ToLower(strings.Join(queries, " ")))

	var results []Result
	for _, entry := range m.collections[collection] {
		res := Result{Text: entry.text, Score: overlap(terms, entry.text)}
		if includeMetadata {
			res.Metadata = entry.meta
		}
		results = append(results, res)
	}

	if len(terms) > 0 {
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Score > results[j].Score
		})
	}

	if topK >= 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func overlap(terms []string, doc string) float64 {
	lower := strings.ToLower(doc)
	var score float64
	for _, term := range terms {
		if strings.Contains(lower, term) {
			score++
		}
	}
	return score
}
