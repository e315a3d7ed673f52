package validator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestOpenAIValidator_Name(t *testing.T) {
	v := NewOpenAIValidator("test-key", "", "")
	if v.Name() != "GPT" {
		t.Errorf("Expected GPT, got %s", v.Name())
	}
}

func TestOpenAIValidator_IsAvailable(t *testing.T) {
	if !NewOpenAIValidator("test-key", "", "").IsAvailable(context.Background()) {
		t.Error("Configured key must report available")
	}
	if NewOpenAIValidator("", "", "").IsAvailable(context.Background()) {
		t.Error("Missing key must report unavailable")
	}
}

func TestOpenAIValidator_Validate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		resp := openai.ChatCompletionResponse{
			ID:    "chatcmpl-123",
			Model: "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{
				{
					Message: openai.ChatCompletionMessage{
						Role:    "assistant",
						Content: `{"confidence": 0.88, "reasoning": "widely documented"}`,
					},
					FinishReason: "stop",
				},
			},
			Usage: openai.Usage{TotalTokens: 120},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	v := NewOpenAIValidator("test-key", "gpt-4o-mini", server.URL)
	result := v.Validate(context.Background(), "The Eiffel Tower is in Paris", "geography")

	if !result.Success() {
		t.Fatalf("Validate failed: %s", result.Error)
	}
	if result.Confidence != 0.88 {
		t.Errorf("Expected confidence 0.88, got %v", result.Confidence)
	}
	if result.Reasoning != "widely documented" {
		t.Errorf("Unexpected reasoning: %s", result.Reasoning)
	}
	if result.TokensUsed != 120 {
		t.Errorf("Expected 120 tokens, got %d", result.TokensUsed)
	}
}

func TestOpenAIValidator_Validate_NoKey(t *testing.T) {
	v := NewOpenAIValidator("", "", "")
	result := v.Validate(context.Background(), "any claim", "general")
	if result.Success() {
		t.Fatal("Expected error result without an API key")
	}
}
