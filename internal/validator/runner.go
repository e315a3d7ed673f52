package validator

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/lumensyntax-org/truthgit/internal/object"
)

// Options controls concurrent validator fan-out.
type Options struct {
	// MaxConcurrent bounds in-flight validator calls. Defaults to 4.
	MaxConcurrent int

	// CallTimeout bounds each individual Validate call. Defaults to 90s.
	CallTimeout time.Duration

	// RatePerSec throttles call starts across all validators. Defaults
	// to 2/s.
	RatePerSec float64

	// Burst is the rate limiter's burst size. Defaults to 2.
	Burst int
}

func (o Options) withDefaults() Options {
	if o.MaxConcurrent <= 0 {
		o.MaxConcurrent = 4
	}
	if o.CallTimeout <= 0 {
		o.CallTimeout = 90 * time.Second
	}
	if o.RatePerSec <= 0 {
		o.RatePerSec = 2
	}
	if o.Burst <= 0 {
		o.Burst = 2
	}
	return o
}

// Collect runs every validator against the claim concurrently and returns
// the raw results alongside the successful ones reduced to the form the
// repository records. Errored validators appear in the first return value
// only.
func Collect(ctx context.Context, validators []Validator, claim, domain string, opts Options) ([]Result, map[string]object.VerifierResult) {
	opts = opts.withDefaults()

	limiter := rate.NewLimiter(rate.Limit(opts.RatePerSec), opts.Burst)
	sem := make(chan struct{}, opts.MaxConcurrent)
	results := make([]Result, len(validators))

	var wg sync.WaitGroup
	for i, v := range validators {
		wg.Add(1)
		go func(i int, v Validator) {
			defer wg.Done()

			if err := limiter.Wait(ctx); err != nil {
				results[i] = errorResult(v.Name(), err)
				return
			}
			sem <- struct{}{}
			defer func() { <-sem }()

			callCtx, cancel := context.WithTimeout(ctx, opts.CallTimeout)
			defer cancel()
			results[i] = v.Validate(callCtx, claim, domain)
		}(i, v)
	}
	wg.Wait()

	reduced := make(map[string]object.VerifierResult)
	for _, r := range results {
		if !r.Success() {
			continue
		}
		reduced[r.ValidatorName] = object.VerifierResult{
			Confidence: r.Confidence,
			Reasoning:  r.Reasoning,
		}
	}
	return results, reduced
}
