package vectorindex

import (
	"context"
	"errors"
	"testing"
)

func TestInMemory(t *testing.T) {
	m := NewInMemory()
	ctx := context.Background()

	if err := m.EnsureCollection(ctx, "c", "model"); err != nil {
		t.Fatalf("EnsureCollection failed: %v", err)
	}

	m.Add(ctx, "c", "model", "Human: the kayak trip", Metadata{Role: "Human", Timestamp: 1})
	m.Add(ctx, "c", "model", "Assistant: bread recipes", Metadata{Role: "Assistant", Timestamp: 2})

	t.Run("TermOverlapRanking", func(t *testing.T) {
		results, err := m.Query(ctx, "c", "model", []string{"kayak"}, 10, true)
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}
		if results[0].Text != "Human: the kayak trip" {
			t.Errorf("expected overlap ranking, got %q first", results[0].Text)
		}
	})

	t.Run("EmptyQueryNeutralOrder", func(t *testing.T) {
		results, _ := m.Query(ctx, "c", "model", []string{""}, 10, true)
		if results[0].Metadata.Timestamp != 1 {
			t.Errorf("empty query should keep insertion order, got %+v", results[0])
		}
	})

	t.Run("TopK", func(t *testing.T) {
		results, _ := m.Query(ctx, "c", "model", []string{"kayak"}, 1, true)
		if len(results) != 1 {
			t.Errorf("expected 1 result, got %d", len(results))
		}
	})

	t.Run("FaultInjection", func(t *testing.T) {
		m.QueryErr = errors.New("down")
		defer func() { m.QueryErr = nil }()
		if _, err := m.Query(ctx, "c", "model", []string{"q"}, 10, true); err == nil {
			t.Error("expected injected query error")
		}
	})
}
