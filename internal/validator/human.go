package validator

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// HumanValidator collects a judgment interactively. It reads from the
// provided reader (stdin in the CLI) and is always available.
type HumanValidator struct {
	in  *bufio.Reader
	out io.Writer
}

// NewHumanValidator creates an interactive validator reading from in and
// prompting on out.
func NewHumanValidator(in io.Reader, out io.Writer) *HumanValidator {
	return &HumanValidator{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Name returns the validator name.
func (v *HumanValidator) Name() string {
	return "HUMAN"
}

// IsAvailable always reports true; a human can always be asked.
func (v *HumanValidator) IsAvailable(ctx context.Context) bool {
	return true
}

// Validate prompts for a confidence percentage and optional reasoning.
func (v *HumanValidator) Validate(ctx context.Context, claim, domain string) Result {
	fmt.Fprintf(v.out, "\nHuman validation requested\n")
	fmt.Fprintf(v.out, "  Claim:  %s\n", claim)
	fmt.Fprintf(v.out, "  Domain: %s\n", domain)
	fmt.Fprintf(v.out, "Confidence (0-100): ")

	line, err := v.readLine(ctx)
	if err != nil {
		return errorResult(v.Name(), fmt.Errorf("read confidence: %w", err))
	}
	percent, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
	if err != nil {
		return errorResult(v.Name(), fmt.Errorf("invalid confidence %q: %w", strings.TrimSpace(line), err))
	}

	fmt.Fprintf(v.out, "Reasoning (optional): ")
	reasoning, err := v.readLine(ctx)
	if err != nil {
		return errorResult(v.Name(), fmt.Errorf("read reasoning: %w", err))
	}
	reasoning = strings.TrimSpace(reasoning)
	if reasoning == "" {
		reasoning = "human judgment"
	}

	return Result{
		ValidatorName: v.Name(),
		Confidence:    clamp01(percent / 100),
		Reasoning:     reasoning,
	}
}

// readLine reads a line, honoring context cancellation between the blocking
// read and returning.
func (v *HumanValidator) readLine(ctx context.Context) (string, error) {
	type lineResult struct {
		line string
		err  error
	}
	ch := make(chan lineResult, 1)
	go func() {
		line, err := v.in.ReadString('\n')
		if err == io.EOF && line != "" {
			err = nil
		}
		ch <- lineResult{line, err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		return res.line, res.err
	}
}
