package framework

import (
	"fmt"
	"strings"
)

// OutcomeKind is the final classification of one run instance.
type OutcomeKind int

const (
	Passed OutcomeKind = iota
	Failed
	Skipped
)

func (k OutcomeKind) String() string {
	switch k {
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of a run instance. Reason is set for skips;
// Errors carries everything reported through T for failures.
type Outcome struct {
	Kind   OutcomeKind
	Reason string
	Errors []error
}

// TestID identifies a run instance: the descriptor name, plus the file-type
// variant when the case is typed.
type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// RunResult pairs a run instance with its outcome.
type RunResult struct {
	TestID  TestID
	Outcome Outcome
}

// Results aggregates every run result of a suite execution.
type Results struct {
	Tests    []RunResult
	Failures []RunResult
}

// OK reports whether the suite as a whole succeeded. Skips never count as
// failures.
func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// Counts returns the number of passed, failed and skipped instances.
func (r Results) Counts() (passed, failed, skipped int) {
	for _, t := range r.Tests {
		switch t.Outcome.Kind {
		case Passed:
			passed++
		case Failed:
			failed++
		case Skipped:
			skipped++
		}
	}
	return
}

func (r *Results) record(res RunResult) {
	r.Tests = append(r.Tests, res)
	if res.Outcome.Kind == Failed {
		r.Failures = append(r.Failures, res)
	}
}

// FailureErrors flattens every recorded failure into TestFailure values, one
// per reported error, in execution order.
func (r Results) FailureErrors() []TestFailure {
	var out []TestFailure
	for _, f := range r.Failures {
		for _, err := range f.Outcome.Errors {
			out = append(out, TestFailure{ID: f.TestID, Err: err})
		}
	}
	return out
}

// TestFailure wraps an error with the instance it belongs to, for display
// in failure summaries.
type TestFailure struct {
	ID  TestID
	Err error
}

func (f TestFailure) Error() string {
	return fmt.Sprintf("[%s]: %s", f.ID, f.Err)
}
