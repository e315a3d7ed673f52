package validator

import (
	"strings"
	"testing"
)

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt("Water boils at 100C", "physics")
	if !strings.Contains(prompt, "Claim: Water boils at 100C") {
		t.Errorf("Prompt missing claim: %s", prompt)
	}
	if !strings.Contains(prompt, "Domain: physics") {
		t.Errorf("Prompt missing domain: %s", prompt)
	}
	if !strings.Contains(prompt, `"confidence"`) {
		t.Errorf("Prompt missing reply contract: %s", prompt)
	}

	defaulted := buildPrompt("some claim", "")
	if !strings.Contains(defaulted, "Domain: general") {
		t.Errorf("Empty domain must default to general: %s", defaulted)
	}
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		wantConf      float64
		wantReasoning string
	}{
		{
			name:          "well formed",
			input:         `{"confidence": 0.85, "reasoning": "consistent with physics"}`,
			wantConf:      0.85,
			wantReasoning: "consistent with physics",
		},
		{
			name:          "missing reasoning",
			input:         `{"confidence": 0.4}`,
			wantConf:      0.4,
			wantReasoning: "no reasoning provided",
		},
		{
			name:          "confidence above range clamped",
			input:         `{"confidence": 1.8, "reasoning": "very sure"}`,
			wantConf:      1,
			wantReasoning: "very sure",
		},
		{
			name:          "confidence below range clamped",
			input:         `{"confidence": -0.5, "reasoning": "doubtful"}`,
			wantConf:      0,
			wantReasoning: "doubtful",
		},
		{
			name:          "unparseable degrades to neutral",
			input:         "I think this is probably true.",
			wantConf:      0.5,
			wantReasoning: "I think this is probably true.",
		},
		{
			name:          "empty degrades to neutral",
			input:         "",
			wantConf:      0.5,
			wantReasoning: "could not parse response",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conf, reasoning := parseReply(tc.input)
			if conf != tc.wantConf {
				t.Errorf("confidence = %v, want %v", conf, tc.wantConf)
			}
			if reasoning != tc.wantReasoning {
				t.Errorf("reasoning = %q, want %q", reasoning, tc.wantReasoning)
			}
		})
	}
}

func TestParseReply_TruncatesLongRawText(t *testing.T) {
	long := strings.Repeat("x", 500)
	_, reasoning := parseReply(long)
	if len(reasoning) != 200 {
		t.Errorf("Expected raw text truncated to 200 chars, got %d", len(reasoning))
	}
}

func TestResultSuccess(t *testing.T) {
	ok := Result{ValidatorName: "GPT", Confidence: 0.8}
	if !ok.Success() {
		t.Error("Result without error must count as success")
	}
	bad := Result{ValidatorName: "GPT", Error: "timeout"}
	if bad.Success() {
		t.Error("Errored result must not count as success")
	}
}
