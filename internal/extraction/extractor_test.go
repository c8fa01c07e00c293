package extraction

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/abhisek/bookwise/internal/llm"
)

func TestExtractIdeas_OrderPreserved(t *testing.T) {
	raw := json.RawMessage(`{"ideas":[
		{"title":"Stocks and flows","summary":"Systems accumulate."},
		{"title":"Feedback loops","summary":"Loops drive behavior."},
		{"title":"Leverage points","summary":"Small changes, big effects."}
	]}`)
	mock := llm.NewMockProvider(llm.MockResponse{Content: raw})

	stubs, err := NewLLMExtractor(mock).ExtractIdeas(context.Background(), "Thinking in Systems")
	if err != nil {
		t.Fatalf("ExtractIdeas: %v", err)
	}
	want := []string{"Stocks and flows", "Feedback loops", "Leverage points"}
	if len(stubs) != len(want) {
		t.Fatalf("ideas = %d, want %d", len(stubs), len(want))
	}
	for i, title := range want {
		if stubs[i].Title != title {
			t.Errorf("ideas[%d] = %q, want %q", i, stubs[i].Title, title)
		}
	}
	if mock.Calls[0].Schema != IdeasSchema {
		t.Error("request did not carry the ideas schema")
	}
}

func TestExtractIdeas_EmptyIsError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"ideas":[]}`)})
	if _, err := NewLLMExtractor(mock).ExtractIdeas(context.Background(), "Unknown Book"); err == nil {
		t.Error("expected error for empty extraction")
	}
}

func TestExtractIdeas_ProviderErrorSurfaces(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	if _, err := NewLLMExtractor(mock).ExtractIdeas(context.Background(), "Any Book"); err == nil {
		t.Error("expected provider error to surface")
	}
}
