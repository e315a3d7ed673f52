// Package validator provides the pluggable verification backends that feed
// Repository.Verify: local-model HTTP (Ollama), cloud APIs (OpenAI,
// Anthropic), and interactive human input. The core only ever sees the
// reduced (confidence, reasoning) contract.
package validator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Validator is the capability interface every backend implements. The
// repository and consensus engine depend only on this interface, never on
// concrete backends.
type Validator interface {
	// Name returns the unique validator name (e.g. "OLLAMA:LLAMA3").
	Name() string

	// IsAvailable checks whether the backend can serve requests (API key
	// set, local server responding).
	IsAvailable(ctx context.Context) bool

	// Validate analyzes a claim and returns confidence plus reasoning,
	// or a Result carrying an error. It never panics and never returns
	// a partial success.
	Validate(ctx context.Context, claim, domain string) Result
}

// Result is a single validator's outcome.
type Result struct {
	ValidatorName string  `json:"validator_name"`
	Confidence    float64 `json:"confidence"`
	Reasoning     string  `json:"reasoning"`
	Model         string  `json:"model,omitempty"`
	TokensUsed    int     `json:"tokens_used,omitempty"`
	Error         string  `json:"error,omitempty"`
}

// Success reports whether the result counts toward consensus.
func (r Result) Success() bool {
	return r.Error == ""
}

const promptTemplate = `You are a truth validator. Analyze the following claim and determine its accuracy.

Claim: %s
Domain: %s

Respond in JSON format:
{
    "confidence": <float between 0 and 1>,
    "reasoning": "<brief explanation>"
}

Be objective. If uncertain, reflect that in a lower confidence score.`

func buildPrompt(claim, domain string) string {
	if domain == "" {
		domain = "general"
	}
	return fmt.Sprintf(promptTemplate, claim, domain)
}

// validationReply is the JSON contract every model backend responds with.
type validationReply struct {
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// parseReply extracts confidence and reasoning from a model's response
// text. Unparseable responses degrade to a neutral confidence with the raw
// text as reasoning rather than failing the validator.
func parseReply(text string) (float64, string) {
	var reply validationReply
	if err := json.Unmarshal([]byte(text), &reply); err != nil {
		trimmed := strings.TrimSpace(text)
		if len(trimmed) > 200 {
			trimmed = trimmed[:200]
		}
		if trimmed == "" {
			trimmed = "could not parse response"
		}
		return 0.5, trimmed
	}
	if reply.Reasoning == "" {
		reply.Reasoning = "no reasoning provided"
	}
	return clamp01(reply.Confidence), reply.Reasoning
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func errorResult(name string, err error) Result {
	return Result{ValidatorName: name, Error: err.Error()}
}
