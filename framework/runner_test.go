package framework

import (
	"os"
	"testing"
	"time"

	"emperror.dev/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/posixfs/fs-contract-tests/config"
)

func runSuite(t *testing.T, cfg *config.Config, filter NameFilter, descriptors ...*TestDescriptor) Results {
	t.Helper()
	registry, err := NewRegistry(descriptors)
	require.NoError(t, err)
	runner := &Runner{
		Registry: registry,
		Config:   cfg,
		Filter:   filter,
		Logger:   NullTestLogger(),
		BaseDir:  t.TempDir(),
	}
	results, err := runner.Run()
	require.NoError(t, err)
	assert.Equal(t, Done, runner.Phase())
	return results
}

func outcomeByID(t *testing.T, results Results, id string) Outcome {
	t.Helper()
	for _, r := range results.Tests {
		if r.TestID.String() == id {
			return r.Outcome
		}
	}
	t.Fatalf("no result for %q", id)
	return Outcome{}
}

func TestRunnerTimeAssertionScenario(t *testing.T) {
	d := &TestDescriptor{
		Name:      "ctime",
		FileTypes: []FileType{Regular},
		Fn: func(ft *T, ctx *TestContext) {
			path, err := ctx.Create(Regular)
			if err != nil {
				ft.Fatalf("%s", err)
			}
			AssertTimesChanged().Path(path, Mtime).Execute(ft, ctx, true, func() {
				future := time.Now().Add(time.Hour)
				if err := os.Chtimes(path, future, future); err != nil {
					ft.Fatalf("chtimes: %s", err)
				}
			})
		},
	}
	results := runSuite(t, testConfig(), NameFilter{}, d)
	require.True(t, results.OK())
	assert.Equal(t, Passed, outcomeByID(t, results, "ctime/regular").Kind)
}

func TestRunnerRecordsFeatureSkip(t *testing.T) {
	d := &TestDescriptor{
		Name:             "eperm_immutable_flag",
		RequiredFeatures: []config.Feature{config.FeatureChflags},
		Fn: func(ft *T, _ *TestContext) {
			ft.Errorf("must not run")
		},
	}
	results := runSuite(t, testConfig(), NameFilter{}, d)
	require.True(t, results.OK(), "skips never fail the suite")
	outcome := outcomeByID(t, results, "eperm_immutable_flag")
	assert.Equal(t, Skipped, outcome.Kind)
	assert.Equal(t, "requires features: chflags", outcome.Reason)
}

func TestRunnerGuardSkipCreatesNoContext(t *testing.T) {
	baseDir := t.TempDir()
	d := &TestDescriptor{
		Name: "link_count_max",
		Guards: []Guard{
			func(*config.Config, string) error {
				return errors.New("link count limit too high")
			},
		},
		Fn: func(ft *T, _ *TestContext) {
			ft.Errorf("must not run")
		},
	}
	registry, err := NewRegistry([]*TestDescriptor{d})
	require.NoError(t, err)
	runner := &Runner{Registry: registry, Config: testConfig(), BaseDir: baseDir}
	results, err := runner.Run()
	require.NoError(t, err)

	outcome := outcomeByID(t, results, "link_count_max")
	assert.Equal(t, Skipped, outcome.Kind)
	assert.Equal(t, "link count limit too high", outcome.Reason)

	entries, err := os.ReadDir(baseDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no context directory may be created for a skipped descriptor")
}

func TestRunnerFailureEndsOnlyThatInstance(t *testing.T) {
	failing := &TestDescriptor{
		Name: "a/fails",
		Fn: func(ft *T, _ *TestContext) {
			ft.Errorf("intentional failure")
		},
	}
	passing := &TestDescriptor{
		Name: "b/passes",
		Fn:   func(*T, *TestContext) {},
	}
	results := runSuite(t, testConfig(), NameFilter{}, failing, passing)
	assert.False(t, results.OK())
	assert.Equal(t, Failed, outcomeByID(t, results, "a/fails").Kind)
	assert.Equal(t, Passed, outcomeByID(t, results, "b/passes").Kind)
}

func TestRunnerRecoversPanickingBody(t *testing.T) {
	d := &TestDescriptor{
		Name: "panics",
		Fn: func(*T, *TestContext) {
			panic("unexpected")
		},
	}
	results := runSuite(t, testConfig(), NameFilter{}, d)
	outcome := outcomeByID(t, results, "panics")
	require.Equal(t, Failed, outcome.Kind)
	assert.Contains(t, outcome.Errors[0].Error(), "unexpected panic in test")
}

func TestRunnerBodySkip(t *testing.T) {
	d := &TestDescriptor{
		Name: "self_skip",
		Fn: func(ft *T, _ *TestContext) {
			ft.SkipWithReason("filesystem does not support inode flags")
		},
	}
	results := runSuite(t, testConfig(), NameFilter{}, d)
	outcome := outcomeByID(t, results, "self_skip")
	assert.Equal(t, Skipped, outcome.Kind)
	assert.Equal(t, "filesystem does not support inode flags", outcome.Reason)
}

func TestRunnerAppliesFilter(t *testing.T) {
	a := &TestDescriptor{Name: "chmod/ctime", Fn: func(*T, *TestContext) {}}
	b := &TestDescriptor{Name: "rmdir/enoent", Fn: func(*T, *TestContext) {}}

	results := runSuite(t, testConfig(), NameFilter{Patterns: []string{"chmod"}}, a, b)
	require.Len(t, results.Tests, 1)
	assert.Equal(t, "chmod/ctime", results.Tests[0].TestID.String())

	results = runSuite(t, testConfig(), NameFilter{Patterns: []string{"chmod"}, Exact: true}, a, b)
	assert.Empty(t, results.Tests)
}

func TestRunnerContextsAreTornDown(t *testing.T) {
	baseDir := t.TempDir()
	d := &TestDescriptor{
		Name: "creates_entries",
		Fn: func(ft *T, ctx *TestContext) {
			if _, err := ctx.Create(Regular); err != nil {
				ft.Fatalf("%s", err)
			}
			if _, err := ctx.Create(Dir); err != nil {
				ft.Fatalf("%s", err)
			}
		},
	}
	registry, err := NewRegistry([]*TestDescriptor{d})
	require.NoError(t, err)
	runner := &Runner{Registry: registry, Config: testConfig(), BaseDir: baseDir}
	results, err := runner.Run()
	require.NoError(t, err)
	require.True(t, results.OK())

	entries, err := os.ReadDir(baseDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "context directories must be removed after the run")
}

func TestRunnerTypedExpansionOutcomes(t *testing.T) {
	d := &TestDescriptor{
		Name:      "typed",
		FileTypes: []FileType{Regular, Dir, Fifo},
		Fn: func(ft *T, ctx *TestContext) {
			if _, err := ctx.Create(ctx.FileType()); err != nil {
				ft.Fatalf("%s", err)
			}
		},
	}
	results := runSuite(t, testConfig(), NameFilter{}, d)
	require.Len(t, results.Tests, 3)
	assert.Equal(t, "typed/regular", results.Tests[0].TestID.String())
	assert.Equal(t, "typed/dir", results.Tests[1].TestID.String())
	assert.Equal(t, "typed/fifo", results.Tests[2].TestID.String())
	for _, r := range results.Tests {
		assert.Equal(t, Passed, r.Outcome.Kind)
	}
}

func TestRunnerDeviceTypesImplyPrivilege(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root, privilege skip cannot trigger")
	}
	d := &TestDescriptor{
		Name:      "devices",
		FileTypes: []FileType{Regular, Block},
		Fn:        func(*T, *TestContext) {},
	}
	results := runSuite(t, testConfig(), NameFilter{}, d)
	outcome := outcomeByID(t, results, "devices")
	assert.Equal(t, Skipped, outcome.Kind)
	assert.Equal(t, "requires root privileges", outcome.Reason)
}

func TestRunnerSerializedUmaskScenario(t *testing.T) {
	previous := unix.Umask(0o022)
	defer unix.Umask(previous)

	d := &TestDescriptor{
		Name:       "umask",
		Serialized: true,
		SerializedFn: func(ft *T, ctx *SerializedTestContext) {
			ctx.WithUmask(0o077, func() {
				if got := unix.Umask(0o077); got != 0o077 {
					ft.Errorf("umask inside scope: expected 077, observed %03o", got)
				}
			})
		},
	}
	results := runSuite(t, testConfig(), NameFilter{}, d)
	require.True(t, results.OK())
	assert.Equal(t, Passed, outcomeByID(t, results, "umask").Kind)
	assert.Equal(t, 0o022, unix.Umask(0o022), "umask must be back where the caller left it")
}

func TestRunnerAbortsOnRestorationFailure(t *testing.T) {
	poisoned := &TestDescriptor{
		Name:       "poisoned",
		Serialized: true,
		SerializedFn: func(_ *T, ctx *SerializedTestContext) {
			ctx.restoreErr = &RestorationError{
				What: "effective uid",
				Err:  errors.New("operation not permitted"),
			}
		},
	}
	after := &TestDescriptor{
		Name: "never_runs",
		Fn: func(ft *T, _ *TestContext) {
			ft.Errorf("must not run")
		},
	}
	registry, err := NewRegistry([]*TestDescriptor{poisoned, after})
	require.NoError(t, err)
	runner := &Runner{Registry: registry, Config: testConfig(), BaseDir: t.TempDir()}

	results, err := runner.Run()
	require.Error(t, err)
	assert.True(t, IsFatal(err))
	require.Len(t, results.Tests, 1, "nothing may run after a restoration failure")
	assert.Equal(t, Failed, results.Tests[0].Outcome.Kind)
}

func TestRunnerTimeoutWhileIdentitySwitchedIsFatal(t *testing.T) {
	cfg := rootDummyAuthConfig(t)
	cfg.Settings.CaseTimeout = 0.05

	d := &TestDescriptor{
		Name:       "stalls_switched",
		Serialized: true,
		SerializedFn: func(ft *T, ctx *SerializedTestContext) {
			entry, err := ctx.NextDummyEntry()
			if err != nil {
				ft.Fatalf("%s", err)
			}
			ctx.AsUser(entry, nil, func() {
				time.Sleep(300 * time.Millisecond)
			})
		},
	}
	registry, err := NewRegistry([]*TestDescriptor{d})
	require.NoError(t, err)
	runner := &Runner{Registry: registry, Config: cfg, BaseDir: t.TempDir()}

	results, err := runner.Run()
	require.Error(t, err)
	assert.True(t, IsFatal(err))
	require.Len(t, results.Tests, 1)
	assert.Equal(t, Failed, results.Tests[0].Outcome.Kind)

	// Let the stalled body finish and put the identity back before any
	// other test runs.
	time.Sleep(500 * time.Millisecond)
	assert.False(t, identityHeld.Load())
}

func TestRunnerCaseTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.Settings.CaseTimeout = 0.05
	d := &TestDescriptor{
		Name: "stalls",
		Fn: func(*T, *TestContext) {
			time.Sleep(2 * time.Second)
		},
	}
	results := runSuite(t, cfg, NameFilter{}, d)
	outcome := outcomeByID(t, results, "stalls")
	require.Equal(t, Failed, outcome.Kind)
	assert.Contains(t, outcome.Errors[0].Error(), "timed out")
}
