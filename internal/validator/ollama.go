package validator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultOllamaURL is where a local Ollama server listens.
const DefaultOllamaURL = "http://localhost:11434"

// OllamaValidator validates claims against a locally running Ollama model.
// No API keys required.
type OllamaValidator struct {
	model      string
	baseURL    string
	httpClient *http.Client
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
}

type ollamaResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`

	PromptEvalCount int `json:"prompt_eval_count,omitempty"`
	EvalCount       int `json:"eval_count,omitempty"`
}

type ollamaError struct {
	Error string `json:"error"`
}

// NewOllamaValidator creates a validator backed by a local Ollama model.
// baseURL defaults to DefaultOllamaURL.
func NewOllamaValidator(model, baseURL string, timeout time.Duration) *OllamaValidator {
	if model == "" {
		model = "llama3"
	}
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	if timeout == 0 {
		timeout = 60 * time.Second // Local models can be slow
	}
	return &OllamaValidator{
		model:      model,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name returns the validator name, e.g. "OLLAMA:LLAMA3".
func (v *OllamaValidator) Name() string {
	return "OLLAMA:" + strings.ToUpper(v.model)
}

// IsAvailable checks whether the Ollama server is running.
func (v *OllamaValidator) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := v.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

// Validate asks the local model for a confidence/reasoning judgment.
func (v *OllamaValidator) Validate(ctx context.Context, claim, domain string) Result {
	apiReq := ollamaRequest{
		Model:  v.model,
		Prompt: buildPrompt(claim, domain),
		Stream: false,
		Format: "json",
	}
	body, err := json.Marshal(apiReq)
	if err != nil {
		return errorResult(v.Name(), fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return errorResult(v.Name(), fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := v.httpClient.Do(httpReq)
	if err != nil {
		return errorResult(v.Name(), fmt.Errorf("execute request: %w", err))
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return errorResult(v.Name(), fmt.Errorf("read response: %w", err))
	}
	if httpResp.StatusCode != http.StatusOK {
		var apiErr ollamaError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error != "" {
			return errorResult(v.Name(), fmt.Errorf("API error (%d): %s", httpResp.StatusCode, apiErr.Error))
		}
		return errorResult(v.Name(), fmt.Errorf("API error (%d): %s", httpResp.StatusCode, string(respBody)))
	}

	var resp ollamaResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return errorResult(v.Name(), fmt.Errorf("unmarshal response: %w", err))
	}

	confidence, reasoning := parseReply(resp.Response)
	return Result{
		ValidatorName: v.Name(),
		Confidence:    confidence,
		Reasoning:     reasoning,
		Model:         v.model,
		TokensUsed:    resp.PromptEvalCount + resp.EvalCount,
	}
}
