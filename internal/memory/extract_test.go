package memory

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/felixgeelhaar/mnemo/internal/provider"
)

func TestExtractor_FencedResponse(t *testing.T) {
	p := provider.NewStubProvider("```\nkeyterms = [\"x\", \"y\"]\n```")
	e := NewExtractor(p, testObserver())

	got := e.Extract(context.Background(), "some text")
	if !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Errorf("expected [x y], got %v", got)
	}
	if len(p.Requests) != 1 {
		t.Errorf("expected 1 model call, got %d", len(p.Requests))
	}
}

func TestExtractor_BareListResponse(t *testing.T) {
	p := provider.NewStubProvider(`["kayaking", "exercise"]`)
	e := NewExtractor(p, testObserver())

	got := e.Extract(context.Background(), "some text")
	if !reflect.DeepEqual(got, []string{"kayaking", "exercise"}) {
		t.Errorf("expected [kayaking exercise], got %v", got)
	}
}

func TestExtractor_RetryThenSucceed(t *testing.T) {
	p := provider.NewStubProvider(
		"Sure! The key terms are kayaking and exercise.",
		"```\nkeyterms = [\"kayaking\"]\n```",
	)
	e := NewExtractor(p, testObserver())

	got := e.Extract(context.Background(), "I like kayaking")
	if !reflect.DeepEqual(got, []string{"kayaking"}) {
		t.Errorf("expected [kayaking], got %v", got)
	}
	if len(p.Requests) != 2 {
		t.Fatalf("expected 2 model calls, got %d", len(p.Requests))
	}
	if strings.Contains(p.Requests[0].Prompt, "previous response") {
		t.Error("first prompt should not be the corrective variant")
	}
	if !strings.Contains(p.Requests[1].Prompt, "previous response was not in the correct format") {
		t.Error("retry prompt should state the previous format was wrong")
	}
}

func TestExtractor_BoundedRetries(t *testing.T) {
	p := provider.NewStubProvider(
		"nope",
		"still nope",
		"```\ngarbage\n```",
		"```\nkeyterms = [\"never reached\"]\n```",
	)
	e := NewExtractor(p, testObserver())

	got := e.Extract(context.Background(), "some text")
	if len(got) != 0 {
		t.Errorf("expected empty terms after exhausting retries, got %v", got)
	}
	if len(p.Requests) != 3 {
		t.Errorf("expected exactly 3 model calls, got %d", len(p.Requests))
	}
}

func TestExtractor_ProviderErrorCountsAsAttempt(t *testing.T) {
	p := provider.NewStubProvider()
	p.Err = context.DeadlineExceeded
	e := NewExtractor(p, testObserver())

	got := e.Extract(context.Background(), "some text")
	if len(got) != 0 {
		t.Errorf("expected empty terms, got %v", got)
	}
	if len(p.Requests) != 3 {
		t.Errorf("expected exactly 3 model calls, got %d", len(p.Requests))
	}
}

func TestExtractor_RequestShape(t *testing.T) {
	p := provider.NewStubProvider(`["x"]`)
	e := NewExtractor(p, testObserver())

	e.Extract(context.Background(), "the utterance")

	req := p.Requests[0]
	if !strings.Contains(req.Prompt, "the utterance") {
		t.Error("prompt should contain the source text")
	}
	if req.Temperature != 0.2 {
		t.Errorf("expected temperature 0.2, got %v", req.Temperature)
	}
	if req.MaxTokens != 200 {
		t.Errorf("expected 200 max tokens, got %d", req.MaxTokens)
	}
	if req.NumChoices != 1 {
		t.Errorf("expected 1 choice, got %d", req.NumChoices)
	}
}
