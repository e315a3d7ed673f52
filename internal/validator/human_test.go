package validator

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestHumanValidator_Validate(t *testing.T) {
	in := strings.NewReader("85\nchecked the reference myself\n")
	var out bytes.Buffer

	v := NewHumanValidator(in, &out)
	if v.Name() != "HUMAN" {
		t.Errorf("Expected HUMAN, got %s", v.Name())
	}
	if !v.IsAvailable(context.Background()) {
		t.Error("Human validator must always be available")
	}

	result := v.Validate(context.Background(), "Water boils at 100C", "physics")
	if !result.Success() {
		t.Fatalf("Validate failed: %s", result.Error)
	}
	if result.Confidence != 0.85 {
		t.Errorf("Expected confidence 0.85, got %v", result.Confidence)
	}
	if result.Reasoning != "checked the reference myself" {
		t.Errorf("Unexpected reasoning: %q", result.Reasoning)
	}
	if !strings.Contains(out.String(), "Water boils at 100C") {
		t.Error("Prompt did not show the claim")
	}
}

func TestHumanValidator_DefaultReasoning(t *testing.T) {
	v := NewHumanValidator(strings.NewReader("40\n\n"), &bytes.Buffer{})
	result := v.Validate(context.Background(), "claim", "general")
	if !result.Success() {
		t.Fatalf("Validate failed: %s", result.Error)
	}
	if result.Reasoning != "human judgment" {
		t.Errorf("Expected default reasoning, got %q", result.Reasoning)
	}
}

func TestHumanValidator_ClampsPercent(t *testing.T) {
	v := NewHumanValidator(strings.NewReader("150\nsure\n"), &bytes.Buffer{})
	result := v.Validate(context.Background(), "claim", "general")
	if result.Confidence != 1 {
		t.Errorf("Expected confidence clamped to 1, got %v", result.Confidence)
	}
}

func TestHumanValidator_InvalidInput(t *testing.T) {
	v := NewHumanValidator(strings.NewReader("definitely\n"), &bytes.Buffer{})
	result := v.Validate(context.Background(), "claim", "general")
	if result.Success() {
		t.Fatal("Non-numeric confidence must produce an error result")
	}
}
