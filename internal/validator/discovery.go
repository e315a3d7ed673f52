package validator

import (
	"context"
	"fmt"
	"os"
	"time"
)

// Backend identifies a validator implementation.
type Backend string

const (
	BackendOllama    Backend = "ollama"
	BackendOpenAI    Backend = "openai"
	BackendAnthropic Backend = "anthropic"
	BackendHuman     Backend = "human"
)

// Candidate describes one validator to probe during discovery. Policies are
// plain data so callers can reorder, trim, or extend them.
type Candidate struct {
	Backend   Backend
	Model     string
	BaseURL   string
	APIKeyEnv string
}

// Policy is an ordered list of candidates; discovery probes them in order.
type Policy []Candidate

// DefaultPolicy returns the standard discovery order: local Ollama models
// first, then cloud APIs. With localOnly, cloud candidates are omitted.
func DefaultPolicy(localOnly bool) Policy {
	policy := Policy{
		{Backend: BackendOllama, Model: "llama3"},
		{Backend: BackendOllama, Model: "mistral"},
		{Backend: BackendOllama, Model: "phi3"},
	}
	if !localOnly {
		policy = append(policy,
			Candidate{Backend: BackendAnthropic, APIKeyEnv: "ANTHROPIC_API_KEY"},
			Candidate{Backend: BackendOpenAI, APIKeyEnv: "OPENAI_API_KEY"},
		)
	}
	return policy
}

// Build instantiates the validator this candidate describes.
func (c Candidate) Build() (Validator, error) {
	switch c.Backend {
	case BackendOllama:
		return NewOllamaValidator(c.Model, c.BaseURL, 0), nil
	case BackendOpenAI:
		return NewOpenAIValidator(os.Getenv(c.keyEnv("OPENAI_API_KEY")), c.Model, c.BaseURL), nil
	case BackendAnthropic:
		return NewAnthropicValidator(os.Getenv(c.keyEnv("ANTHROPIC_API_KEY")), c.Model, c.BaseURL), nil
	case BackendHuman:
		return NewHumanValidator(os.Stdin, os.Stdout), nil
	default:
		return nil, fmt.Errorf("unknown validator backend %q", c.Backend)
	}
}

func (c Candidate) keyEnv(fallback string) string {
	if c.APIKeyEnv != "" {
		return c.APIKeyEnv
	}
	return fallback
}

// probeTimeout bounds each availability check so a hung local server cannot
// stall discovery.
const probeTimeout = 3 * time.Second

// Discover probes the policy's candidates in order and returns the available
// validators, deduplicated by name. It fails when fewer than min are found.
func Discover(ctx context.Context, policy Policy, min int) ([]Validator, error) {
	var found []Validator
	seen := make(map[string]bool)
	for _, cand := range policy {
		v, err := cand.Build()
		if err != nil {
			return nil, err
		}
		if seen[v.Name()] {
			continue
		}
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		available := v.IsAvailable(probeCtx)
		cancel()
		if !available {
			continue
		}
		seen[v.Name()] = true
		found = append(found, v)
	}
	if len(found) < min {
		return found, fmt.Errorf("found %d available validators, need at least %d", len(found), min)
	}
	return found, nil
}
