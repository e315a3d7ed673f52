// Package consensus turns independent validator opinions into a pass/fail
// verdict. The computation is a pure function: no storage, no network.
package consensus

// Quorum is the minimum number of successful opinions required before a
// verdict is meaningful. A single opinion never constitutes consensus.
const Quorum = 2

// DefaultThreshold is the mean confidence required for a passing verdict.
const DefaultThreshold = 0.66

const (
	// agreementEpsilon is the max-min confidence spread below which a
	// passing verdict counts as unanimous.
	agreementEpsilon = 0.05

	// failureFloor is the mean confidence below which a non-passing
	// verdict is classified FAILED rather than SPLIT.
	failureFloor = 0.2
)

// ResultType classifies the shape of a consensus outcome.
type ResultType string

const (
	TypeUnanimous ResultType = "UNANIMOUS" // Passed with near-identical confidences
	TypeMajority  ResultType = "MAJORITY"  // Passed but validators disagreed
	TypeSplit     ResultType = "SPLIT"     // Not passed, opinions spread out
	TypeFailed    ResultType = "FAILED"    // Quorum unmet or confidence near zero
)

// Opinion is a single validator's contribution. An Opinion with a non-empty
// Err is excluded from the successful set, never clamped into it.
type Opinion struct {
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
	Err        string  `json:"error,omitempty"`
}

// Success reports whether the opinion counts toward consensus.
func (o Opinion) Success() bool {
	return o.Err == ""
}

// Result is the aggregated verdict. It is a derived value, persisted only as
// part of a Verification.
type Result struct {
	Value  float64    `json:"value"`
	Passed bool       `json:"passed"`
	Type   ResultType `json:"consensus_type"`
}

// Calculate aggregates validator opinions into a Result.
//
// Opinions with errors or out-of-range confidences are excluded. With fewer
// than Quorum successful opinions the verdict never passes, regardless of
// confidence. Otherwise the value is the arithmetic mean of the successful
// confidences, compared against threshold.
func Calculate(opinions map[string]Opinion, threshold float64) Result {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	var confidences []float64
	for _, op := range opinions {
		if !op.Success() {
			continue
		}
		// An out-of-range confidence is a validator error, not a
		// value to clamp.
		if op.Confidence < 0 || op.Confidence > 1 {
			continue
		}
		confidences = append(confidences, op.Confidence)
	}

	if len(confidences) == 0 {
		return Result{Value: 0, Passed: false, Type: TypeFailed}
	}

	sum := 0.0
	minC, maxC := confidences[0], confidences[0]
	for _, c := range confidences {
		sum += c
		if c < minC {
			minC = c
		}
		if c > maxC {
			maxC = c
		}
	}
	value := sum / float64(len(confidences))

	if len(confidences) < Quorum {
		return Result{Value: value, Passed: false, Type: TypeFailed}
	}

	passed := value >= threshold
	spread := maxC - minC

	var rt ResultType
	switch {
	case passed && spread <= agreementEpsilon:
		rt = TypeUnanimous
	case passed:
		rt = TypeMajority
	case value < failureFloor:
		rt = TypeFailed
	default:
		rt = TypeSplit
	}

	return Result{Value: value, Passed: passed, Type: rt}
}
