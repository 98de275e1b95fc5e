package framework

import (
	"github.com/posixfs/fs-contract-tests/config"
)

// Guard is a predicate evaluated before a test runs. It receives the active
// configuration and the candidate base path for the run, and returns a
// descriptive error when the test should be skipped. Guards may probe the
// filesystem (pathconf and the like) but must never mutate it.
type Guard func(cfg *config.Config, basePath string) error

// TestFunc is the body of a non-serialized test case.
type TestFunc func(t *T, ctx *TestContext)

// SerializedTestFunc is the body of a test case that needs identity or
// umask switching.
type SerializedTestFunc func(t *T, ctx *SerializedTestContext)

// TestDescriptor is the static metadata for one test case. Descriptors are
// built once at startup and never modified afterwards.
type TestDescriptor struct {
	// Name uniquely identifies the case and is what filter patterns are
	// matched against, e.g. "chmod/ctime".
	Name string

	// Documentation is a short human-readable description, printed in
	// verbose mode and reused as context on failure.
	Documentation string

	// RequiresPrivilege marks cases that must run with euid 0.
	RequiresPrivilege bool

	// RequiredFeatures lists opt-in filesystem features that must be
	// enabled in the configuration for the case to run.
	RequiredFeatures []config.Feature

	// RequiredFlags lists file flags (UF_IMMUTABLE, ...) that must be
	// supported by the filesystem under test.
	RequiredFlags []string

	// Guards run in declaration order after the privilege and feature
	// checks; the first failure skips the case with the guard's message.
	Guards []Guard

	// FileTypes, when non-empty, expands the case into one run instance
	// per type. Empty means the case runs once, untyped.
	FileTypes []FileType

	// Serialized marks cases that switch process identity or umask and
	// therefore need a SerializedTestContext. Exactly one of Fn or
	// SerializedFn must be set, matching this flag.
	Serialized bool

	Fn           TestFunc
	SerializedFn SerializedTestFunc
}
