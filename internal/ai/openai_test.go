package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestParseLineList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "plain lines",
			in:   "cats in space\nhaunted kitchens",
			want: []string{"cats in space", "haunted kitchens"},
		},
		{
			name: "numbered and bulleted",
			in:   "1. cats in space\n- haunted kitchens\n* deep sea disco",
			want: []string{"cats in space", "haunted kitchens", "deep sea disco"},
		},
		{
			name: "blank lines and duplicates",
			in:   "cats in space\n\nCats In Space\nhaunted kitchens",
			want: []string{"cats in space", "haunted kitchens"},
		},
		{
			name: "empty input",
			in:   "  \n\n",
			want: []string{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := parseLineList(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestParseLineListCapsCandidates(t *testing.T) {
	in := "a\nb\nc\nd\ne\nf\ng\nh\ni\nj"
	got := parseLineList(in)
	if len(got) != 8 {
		t.Fatalf("expected list capped at 8, got %d", len(got))
	}
}

func TestGenerateUsesPlayerPromptVerbatim(t *testing.T) {
	var imagePrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/images/generations" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req imageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		imagePrompt = req.Prompt
		resp := map[string]any{
			"data": []map[string]any{{"url": "https://images.test/1.png"}},
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer srv.Close()

	client := New("test-key", "test-model", "test-image-model")
	client.baseURL = srv.URL

	question, err := client.Generate(context.Background(), 3, "", "  a sandcastle at dusk  ")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if imagePrompt != "a sandcastle at dusk" {
		t.Fatalf("expected the player's prompt sent verbatim, got %q", imagePrompt)
	}
	if question.OriginalPrompt != "a sandcastle at dusk" {
		t.Fatalf("unexpected prompt %q", question.OriginalPrompt)
	}
	if question.ImageURL != "https://images.test/1.png" || question.RoundNumber != 3 {
		t.Fatalf("unexpected question %#v", question)
	}
	if question.ID == "" {
		t.Fatal("expected a question id")
	}
}

func TestThemesRequiresContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "\n\n"}},
			},
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer srv.Close()

	client := New("test-key", "test-model", "test-image-model")
	client.baseURL = srv.URL

	if _, err := client.Themes(context.Background()); err == nil {
		t.Fatal("expected an error for an empty theme list")
	}
}
