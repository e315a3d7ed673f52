package validator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAnthropicValidator_Name(t *testing.T) {
	v := NewAnthropicValidator("test-key", "", "")
	if v.Name() != "CLAUDE" {
		t.Errorf("Expected CLAUDE, got %s", v.Name())
	}
}

func TestAnthropicValidator_IsAvailable(t *testing.T) {
	if !NewAnthropicValidator("test-key", "", "").IsAvailable(context.Background()) {
		t.Error("Configured key must report available")
	}
	if NewAnthropicValidator("", "", "").IsAvailable(context.Background()) {
		t.Error("Missing key must report unavailable")
	}
}

func TestAnthropicValidator_Validate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Expected path /v1/messages, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("Expected x-api-key header, got %s", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Error("Missing anthropic-version header")
		}

		resp := anthropicResponse{
			Model: "claude-3-5-haiku-20241022",
			Content: []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			}{
				{Type: "text", Text: `{"confidence": 0.75, "reasoning": "supported by records"}`},
			},
		}
		resp.Usage.InputTokens = 30
		resp.Usage.OutputTokens = 20
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	v := NewAnthropicValidator("test-key", "", server.URL)
	result := v.Validate(context.Background(), "The Library of Alexandria burned", "history")

	if !result.Success() {
		t.Fatalf("Validate failed: %s", result.Error)
	}
	if result.Confidence != 0.75 {
		t.Errorf("Expected confidence 0.75, got %v", result.Confidence)
	}
	if result.TokensUsed != 50 {
		t.Errorf("Expected 50 tokens, got %d", result.TokensUsed)
	}
}

func TestAnthropicValidator_Validate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer server.Close()

	v := NewAnthropicValidator("bad-key", "", server.URL)
	result := v.Validate(context.Background(), "any claim", "general")

	if result.Success() {
		t.Fatal("Expected error result")
	}
	if !strings.Contains(result.Error, "invalid x-api-key") {
		t.Errorf("Expected API error message, got %q", result.Error)
	}
}

func TestAnthropicValidator_Validate_NoKey(t *testing.T) {
	v := NewAnthropicValidator("", "", "")
	result := v.Validate(context.Background(), "any claim", "general")
	if result.Success() {
		t.Fatal("Expected error result without an API key")
	}
}
