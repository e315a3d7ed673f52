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

const anthropicAPIVersion = "2023-06-01"

// AnthropicValidator validates claims using Anthropic's Messages API.
// Requires an API key.
type AnthropicValidator struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model string `json:"model"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type anthropicError struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewAnthropicValidator creates a cloud validator backed by an Anthropic
// model. baseURL overrides the API endpoint (useful for tests).
func NewAnthropicValidator(apiKey, model, baseURL string) *AnthropicValidator {
	if model == "" {
		model = "claude-3-5-haiku-20241022"
	}
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	return &AnthropicValidator{
		apiKey:     apiKey,
		model:      model,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Name returns the validator name.
func (v *AnthropicValidator) Name() string {
	return "CLAUDE"
}

// IsAvailable checks whether an API key is configured.
func (v *AnthropicValidator) IsAvailable(ctx context.Context) bool {
	return v.apiKey != ""
}

// Validate asks the model for a confidence/reasoning judgment.
func (v *AnthropicValidator) Validate(ctx context.Context, claim, domain string) Result {
	if v.apiKey == "" {
		return Result{ValidatorName: v.Name(), Error: "ANTHROPIC_API_KEY not set"}
	}

	resp, err := v.makeRequest(ctx, anthropicRequest{
		Model:     v.model,
		MaxTokens: 256,
		Messages: []anthropicMessage{
			{Role: "user", Content: buildPrompt(claim, domain)},
		},
	})
	if err != nil {
		return errorResult(v.Name(), fmt.Errorf("Anthropic API error: %w", err))
	}
	if len(resp.Content) == 0 {
		return Result{ValidatorName: v.Name(), Error: "no content in Anthropic response"}
	}

	confidence, reasoning := parseReply(strings.TrimSpace(resp.Content[0].Text))
	return Result{
		ValidatorName: v.Name(),
		Confidence:    confidence,
		Reasoning:     reasoning,
		Model:         resp.Model,
		TokensUsed:    resp.Usage.InputTokens + resp.Usage.OutputTokens,
	}
}

func (v *AnthropicValidator) makeRequest(ctx context.Context, apiReq anthropicRequest) (*anthropicResponse, error) {
	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/messages", v.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", v.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

	httpResp, err := v.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		var apiErr anthropicError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s - %s", httpResp.StatusCode, apiErr.Error.Type, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("API error (%d): %s", httpResp.StatusCode, string(respBody))
	}

	var resp anthropicResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &resp, nil
}
