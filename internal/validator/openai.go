package validator

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIValidator validates claims using OpenAI's chat completions API.
// Requires an API key.
type OpenAIValidator struct {
	client *openai.Client
	model  string
	apiKey string
}

// NewOpenAIValidator creates a cloud validator backed by an OpenAI model.
// baseURL overrides the API endpoint (useful for compatible gateways and
// tests).
func NewOpenAIValidator(apiKey, model, baseURL string) *OpenAIValidator {
	if model == "" {
		model = openai.GPT4oMini
	}
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	return &OpenAIValidator{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		apiKey: apiKey,
	}
}

// Name returns the validator name.
func (v *OpenAIValidator) Name() string {
	return "GPT"
}

// IsAvailable checks whether an API key is configured.
func (v *OpenAIValidator) IsAvailable(ctx context.Context) bool {
	return v.apiKey != ""
}

// Validate asks the model for a confidence/reasoning judgment, enforcing a
// JSON-object response.
func (v *OpenAIValidator) Validate(ctx context.Context, claim, domain string) Result {
	if v.apiKey == "" {
		return Result{ValidatorName: v.Name(), Error: "OPENAI_API_KEY not set"}
	}

	resp, err := v.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: v.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(claim, domain),
			},
		},
		MaxTokens: 256,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return errorResult(v.Name(), fmt.Errorf("OpenAI API error: %w", err))
	}
	if len(resp.Choices) == 0 {
		return Result{ValidatorName: v.Name(), Error: "no response from OpenAI"}
	}

	confidence, reasoning := parseReply(resp.Choices[0].Message.Content)
	return Result{
		ValidatorName: v.Name(),
		Confidence:    confidence,
		Reasoning:     reasoning,
		Model:         v.model,
		TokensUsed:    resp.Usage.TotalTokens,
	}
}
