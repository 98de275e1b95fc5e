package framework

import (
	"fmt"

	"emperror.dev/errors"
	"golang.org/x/sys/unix"
)

// SetupError reports that a context or a required filesystem entry could
// not be created. It ends the run instance as a failure unless the failure
// itself is what the test observes.
type SetupError struct {
	Op  string
	Err error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("setup: %s: %s", e.Op, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

func newSetupError(op string, err error) error {
	return errors.WithStackDepth(&SetupError{Op: op, Err: err}, 1)
}

// AssertionError reports a metadata or condition check that did not hold.
type AssertionError struct {
	Path     string
	Field    string
	Expected string
	Observed string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: %s: expected %s, observed %s", e.Path, e.Field, e.Expected, e.Observed)
}

// SyscallError reports an unexpected error code from the operation under
// test. The errno is frequently the very subject of a test, in which case
// the test matches it explicitly instead of surfacing this error.
type SyscallError struct {
	Op    string
	Errno unix.Errno
}

func (e *SyscallError) Error() string {
	return fmt.Sprintf("%s: unexpected error: %s", e.Op, e.Errno)
}

// RestorationError reports that process identity or umask could not be put
// back after a serialized body. It is the single fatal error class: running
// anything further under a corrupted identity would poison every result.
type RestorationError struct {
	What string
	Err  error
}

func (e *RestorationError) Error() string {
	return fmt.Sprintf("failed to restore %s: %s", e.What, e.Err)
}

func (e *RestorationError) Unwrap() error { return e.Err }

// IsFatal reports whether err must abort the whole run.
func IsFatal(err error) bool {
	var re *RestorationError
	return errors.As(err, &re)
}
