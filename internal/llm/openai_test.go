package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIClientComplete(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"ok\":true}"}}]}`))
	}))
	defer server.Close()

	client := NewOpenAIClientWithURL("test-key", server.URL)
	got, err := client.Complete(context.Background(), "system prompt", "user prompt", Options{
		Temperature: 0.7,
		MaxTokens:   100,
		JSONMode:    true,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != `{"ok":true}` {
		t.Errorf("Unexpected content: %s", got)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("Expected bearer auth header, got %q", gotAuth)
	}
	if gotBody["model"] != openAIModel {
		t.Errorf("Expected model %s, got %v", openAIModel, gotBody["model"])
	}
	respFormat, ok := gotBody["response_format"].(map[string]any)
	if !ok || respFormat["type"] != "json_object" {
		t.Errorf("Expected json_object response format, got %v", gotBody["response_format"])
	}
	messages, ok := gotBody["messages"].([]any)
	if !ok || len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %v", gotBody["messages"])
	}
	first := messages[0].(map[string]any)
	if first["role"] != "system" || first["content"] != "system prompt" {
		t.Errorf("Unexpected system message: %v", first)
	}
}

func TestOpenAIClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "invalid api key"}`))
	}))
	defer server.Close()

	client := NewOpenAIClientWithURL("bad-key", server.URL)
	if _, err := client.Complete(context.Background(), "", "prompt", Options{}); err == nil {
		t.Error("Expected error for non-200 response")
	}
}

func TestOpenAIClientEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := NewOpenAIClientWithURL("key", server.URL)
	if _, err := client.Complete(context.Background(), "", "prompt", Options{}); err == nil {
		t.Error("Expected error for empty choices")
	}
}
