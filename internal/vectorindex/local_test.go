package vectorindex

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// wordEmbedder maps a fixed vocabulary onto axes so cosine ranking is
// predictable in tests.
type wordEmbedder struct {
	vocab map[string]int
}

func (e wordEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, len(e.vocab)+1)
	for word, axis := range e.vocab {
		if containsWord(text, word) {
			vec[axis] = 1
		}
	}
	// Bias axis keeps zero-overlap documents from producing zero vectors.
	vec[len(e.vocab)] = 0.1
	return vec, nil
}

func containsWord(text, word string) bool {
	for _, f := range splitWords(text) {
		if f == word {
			return true
		}
	}
	return false
}

func splitWords(text string) []string {
	var words []string
	var current []rune
	for _, r := range text {
		if r == ' ' || r == ':' || r == ',' || r == '.' {
			if len(current) > 0 {
				words = append(words, string(current))
				current = nil
			}
			continue
		}
		current = append(current, r)
	}
	if len(current) > 0 {
		words = append(words, string(current))
	}
	return words
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	tmpDir, _ := os.MkdirTemp("", "local-index-test-*")
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	db, err := sql.Open("sqlite", filepath.Join(tmpDir, "index.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLocal_AddAndQuery(t *testing.T) {
	db := openTestDB(t)
	embed := wordEmbedder{vocab: map[string]int{"kayak": 0, "cooking": 1}}

	l, err := NewLocal(db, embed)
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}

	ctx := context.Background()
	if err := l.EnsureCollection(ctx, "c", "m"); err != nil {
		t.Fatalf("EnsureCollection failed: %v", err)
	}

	entries := []struct {
		text string
		meta Metadata
	}{
		{"Human: I went kayak touring", Metadata{Role: "Human", Timestamp: 1, EntryID: "e1", KeyTerms: `["kayak"]`}},
		{"Assistant: cooking tips ahead", Metadata{Role: "Assistant", Timestamp: 2, EntryID: "e2", KeyTerms: `["cooking"]`}},
	}
	for _, e := range entries {
		if err := l.Add(ctx, "c", "m", e.text, e.meta); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	t.Run("RanksBySimilarity", func(t *testing.T) {
		results, err := l.Query(ctx, "c", "m", []string{"kayak"}, 10, true)
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}
		if results[0].Text != "Human: I went kayak touring" {
			t.Errorf("expected the kayak entry ranked first, got %q", results[0].Text)
		}
		if results[0].Score <= results[1].Score {
			t.Errorf("expected descending scores, got %v then %v", results[0].Score, results[1].Score)
		}
		if results[0].Metadata.KeyTerms != `["kayak"]` {
			t.Errorf("metadata not round-tripped: %+v", results[0].Metadata)
		}
	})

	t.Run("EmptyQueryKeepsInsertionOrder", func(t *testing.T) {
		results, err := l.Query(ctx, "c", "m", []string{""}, 10, true)
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}
		if results[0].Metadata.EntryID != "e1" || results[1].Metadata.EntryID != "e2" {
			t.Errorf("expected insertion order for empty query, got %+v", results)
		}
	})

	t.Run("TopK", func(t *testing.T) {
		results, err := l.Query(ctx, "c", "m", []string{"kayak"}, 1, true)
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(results) != 1 {
			t.Errorf("expected topK to cap results, got %d", len(results))
		}
	})

	t.Run("UnknownCollectionIsEmpty", func(t *testing.T) {
		results, err := l.Query(ctx, "other", "m", []string{"kayak"}, 10, true)
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(results) != 0 {
			t.Errorf("expected no results, got %d", len(results))
		}
	})

	t.Run("WithoutMetadata", func(t *testing.T) {
		results, err := l.Query(ctx, "c", "m", []string{"kayak"}, 10, false)
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if results[0].Metadata.Role != "" {
			t.Errorf("metadata should be zero when not requested, got %+v", results[0].Metadata)
		}
	})
}

func TestLocal_EnsureCollectionIdempotent(t *testing.T) {
	db := openTestDB(t)
	l, err := NewLocal(db, wordEmbedder{vocab: map[string]int{}})
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}

	ctx := context.Background()
	if err := l.EnsureCollection(ctx, "c", "m"); err != nil {
		t.Fatalf("first EnsureCollection failed: %v", err)
	}
	if err := l.EnsureCollection(ctx, "c", "m"); err != nil {
		t.Fatalf("second EnsureCollection failed: %v", err)
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := cosineSimilarity([]float32{1, 0}, []float32{1, 0}); got < 0.999 {
		t.Errorf("identical vectors should score ~1, got %v", got)
	}
	if got := cosineSimilarity([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Errorf("orthogonal vectors should score 0, got %v", got)
	}
	if got := cosineSimilarity([]float32{1, 0}, []float32{1}); got != 0 {
		t.Errorf("mismatched lengths should score 0, got %v", got)
	}
	if got := cosineSimilarity(nil, nil); got != 0 {
		t.Errorf("empty vectors should score 0, got %v", got)
	}
}
