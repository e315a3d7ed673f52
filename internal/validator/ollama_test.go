package validator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestOllamaValidator_Name(t *testing.T) {
	v := NewOllamaValidator("llama3", "", 0)
	if v.Name() != "OLLAMA:LLAMA3" {
		t.Errorf("Expected OLLAMA:LLAMA3, got %s", v.Name())
	}
	v = NewOllamaValidator("", "", 0)
	if v.Name() != "OLLAMA:LLAMA3" {
		t.Errorf("Empty model must default to llama3, got %s", v.Name())
	}
}

func TestOllamaValidator_Validate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected path /api/generate, got %s", r.URL.Path)
		}
		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if req.Format != "json" {
			t.Errorf("Expected JSON format request, got %q", req.Format)
		}
		if !strings.Contains(req.Prompt, "Water boils") {
			t.Errorf("Prompt missing claim: %s", req.Prompt)
		}

		resp := ollamaResponse{
			Model:           "llama3",
			Response:        `{"confidence": 0.9, "reasoning": "standard physics"}`,
			Done:            true,
			PromptEvalCount: 15,
			EvalCount:       25,
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	v := NewOllamaValidator("llama3", server.URL, 5*time.Second)
	result := v.Validate(context.Background(), "Water boils at 100C", "physics")

	if !result.Success() {
		t.Fatalf("Validate failed: %s", result.Error)
	}
	if result.Confidence != 0.9 {
		t.Errorf("Expected confidence 0.9, got %v", result.Confidence)
	}
	if result.Reasoning != "standard physics" {
		t.Errorf("Unexpected reasoning: %s", result.Reasoning)
	}
	if result.TokensUsed != 40 {
		t.Errorf("Expected 40 tokens, got %d", result.TokensUsed)
	}
}

func TestOllamaValidator_Validate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "model not found"}`))
	}))
	defer server.Close()

	v := NewOllamaValidator("llama3", server.URL, 5*time.Second)
	result := v.Validate(context.Background(), "any claim", "general")

	if result.Success() {
		t.Fatal("Expected error result")
	}
	if !strings.Contains(result.Error, "model not found") {
		t.Errorf("Expected API error message, got %q", result.Error)
	}
}

func TestOllamaValidator_Validate_ServerDown(t *testing.T) {
	v := NewOllamaValidator("llama3", "http://127.0.0.1:1", time.Second)
	result := v.Validate(context.Background(), "any claim", "general")
	if result.Success() {
		t.Fatal("Expected error result for unreachable server")
	}
	if result.ValidatorName != "OLLAMA:LLAMA3" {
		t.Errorf("Error result must carry the validator name")
	}
}

func TestOllamaValidator_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("Expected path /api/tags, got %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	up := NewOllamaValidator("llama3", server.URL, time.Second)
	if !up.IsAvailable(context.Background()) {
		t.Error("Expected running server to be available")
	}

	down := NewOllamaValidator("llama3", "http://127.0.0.1:1", time.Second)
	if down.IsAvailable(context.Background()) {
		t.Error("Expected unreachable server to be unavailable")
	}
}
