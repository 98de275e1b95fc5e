package framework

import (
	"fmt"
	"runtime/debug"
	"sync"

	"emperror.dev/errors"
)

// T is handed to every test body and used similarly to *testing.T. It
// implements require.TestingT so the standard testify assertions work
// inside test cases, has explicit skip support, and records everything the
// body reports so the engine can build the instance's outcome.
type T struct {
	id     TestID
	logger TestLogger

	mu         sync.Mutex
	failed     bool
	skipped    bool
	skipReason string
	errs       []error
}

func newT(id TestID, logger TestLogger) *T {
	return &T{id: id, logger: logger}
}

// ID returns the identifier of the run instance this T belongs to.
func (t *T) ID() TestID {
	return t.id
}

// Errorf records a failure and keeps the body running.
func (t *T) Errorf(format string, args ...interface{}) {
	t.Error(fmt.Errorf(format, args...))
}

// Error records a failure error and keeps the body running.
func (t *T) Error(err error) {
	t.mu.Lock()
	t.failed = true
	t.errs = append(t.errs, err)
	t.mu.Unlock()
	t.logger.TestError(t.id, err)
}

// FailNow aborts the body. The engine recognizes the panic value and turns
// the recorded errors into a Fail outcome.
func (t *T) FailNow() {
	panic(t)
}

// Fatalf records a failure and aborts the body.
func (t *T) Fatalf(format string, args ...interface{}) {
	t.Errorf(format, args...)
	t.FailNow()
}

// Skip aborts the body and marks the instance skipped.
func (t *T) Skip() {
	t.mu.Lock()
	t.skipped = true
	t.mu.Unlock()
	panic(t)
}

// SkipWithReason aborts the body and marks the instance skipped with the
// given reason.
func (t *T) SkipWithReason(reason string) {
	t.mu.Lock()
	t.skipReason = reason
	t.mu.Unlock()
	t.Skip()
}

// recoverFromPanic converts a panic escaping the body into a recorded
// failure, unless the panic is the T sentinel used by FailNow and Skip.
func (t *T) recoverFromPanic() {
	r := recover()
	if r == nil {
		return
	}
	if _, ok := r.(*T); ok {
		t.mu.Lock()
		noErrors := !t.skipped && len(t.errs) == 0
		t.mu.Unlock()
		if noErrors {
			t.Error(errors.New("test failed with no failure message"))
		}
		return
	}
	t.Error(fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack())))
}

// outcome classifies the instance. A recorded failure wins over a later
// skip: once a violation is observed, bailing out must not hide it.
func (t *T) outcome() Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case t.failed:
		return Outcome{Kind: Failed, Errors: t.errs}
	case t.skipped:
		return Outcome{Kind: Skipped, Reason: t.skipReason}
	default:
		return Outcome{Kind: Passed}
	}
}
