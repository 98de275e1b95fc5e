package framework

import (
	"os"
	"path/filepath"
	"time"

	"emperror.dev/errors"
	"github.com/apex/log"
	"golang.org/x/sys/unix"

	"github.com/posixfs/fs-contract-tests/config"
)

// Phase is the stage the engine is in during a suite run.
type Phase int

const (
	Pending Phase = iota
	Filtering
	Resolving
	Expanding
	Running
	Reporting
	Done
)

// Runner executes the suite: filter, resolve, expand, run, collect. Run
// instances execute strictly one at a time, since serialized tests mutate
// process-wide identity and umask.
type Runner struct {
	Registry *Registry
	Config   *config.Config
	Filter   NameFilter
	Logger   TestLogger

	// BaseDir is the run root: every context gets a uniquely named
	// subtree beneath it. It must already exist.
	BaseDir string

	phase Phase
}

// unit is one filtered descriptor with its resolution and, when approved,
// its expanded run instances.
type unit struct {
	desc       *TestDescriptor
	resolution Resolution
	instances  []RunInstance
}

// Phase reports the engine's current stage.
func (r *Runner) Phase() Phase {
	return r.phase
}

// Run executes the suite and returns the collected results. The returned
// error is non-nil only for fatal conditions: a run-root problem, or a
// failed identity/umask restoration, after which no further test may
// execute.
func (r *Runner) Run() (Results, error) {
	if r.Logger == nil {
		r.Logger = NullTestLogger()
	}
	var results Results

	// Tests control created modes themselves; an inherited umask would
	// skew every mode assertion.
	previousUmask := unix.Umask(0)
	defer unix.Umask(previousUmask)

	r.phase = Filtering
	descriptors := r.Registry.Match(r.Filter)

	r.phase = Resolving
	units := make([]unit, 0, len(descriptors))
	for _, d := range descriptors {
		units = append(units, unit{desc: d, resolution: Resolve(d, r.Config, r.BaseDir)})
	}

	r.phase = Expanding
	for i := range units {
		if units[i].resolution.Approved {
			units[i].instances = Expand(units[i].desc)
		}
	}

	r.phase = Running
	for _, u := range units {
		if !u.resolution.Approved {
			id := TestID{Path: []string{u.desc.Name}}
			r.Logger.TestStarted(id)
			outcome := Outcome{Kind: Skipped, Reason: u.resolution.Reason}
			r.Logger.TestFinished(id, outcome)
			results.record(RunResult{TestID: id, Outcome: outcome})
			continue
		}
		for _, inst := range u.instances {
			r.Logger.TestStarted(inst.ID)
			outcome, fatal := r.runInstance(inst)
			r.Logger.TestFinished(inst.ID, outcome)
			results.record(RunResult{TestID: inst.ID, Outcome: outcome})
			if fatal != nil {
				r.phase = Done
				return results, fatal
			}
		}
	}

	r.phase = Reporting
	r.phase = Done
	return results, nil
}

// runInstance creates a fresh context, executes the body with panic
// capture and an optional watchdog, and tears the context down
// unconditionally. The second return value is non-nil only for fatal
// restoration failures.
func (r *Runner) runInstance(inst RunInstance) (Outcome, error) {
	dir := filepath.Join(r.BaseDir, randomName())
	if err := os.Mkdir(dir, 0o755); err != nil {
		return Outcome{Kind: Failed, Errors: []error{newSetupError("creating context directory", err)}}, nil
	}

	t := newT(inst.ID, r.Logger)

	var ctx *TestContext
	var sctx *SerializedTestContext
	if inst.Descriptor.Serialized {
		sctx = NewSerializedTestContext(r.Config, dir)
		ctx = sctx.TestContext
	} else {
		ctx = NewTestContext(r.Config, dir)
	}
	ctx.fileType = inst.FileType
	ctx.typed = inst.Typed

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer t.recoverFromPanic()
		if inst.Descriptor.Serialized {
			inst.Descriptor.SerializedFn(t, sctx)
		} else {
			inst.Descriptor.Fn(t, ctx)
		}
	}()

	timedOut := false
	if timeout := r.Config.Settings.CaseTimeoutDuration(); timeout > 0 {
		timer := time.NewTimer(timeout)
		select {
		case <-done:
			timer.Stop()
		case <-timer.C:
			timedOut = true
		}
	} else {
		<-done
	}

	if timedOut && sctx != nil {
		if sctx.identityActive() {
			// The stalled body still holds the switched identity; there
			// is no safe way to reclaim it, so the whole run must stop.
			ctx.Teardown()
			return Outcome{Kind: Failed, Errors: []error{errors.New("test body timed out")}},
				&RestorationError{What: "process identity", Err: errors.New("test body stalled while identity was switched")}
		}
		// The goroutine may still be alive; keep it away from the
		// process-wide identity and umask.
		sctx.abandon()
	}

	ctx.Teardown()

	if sctx != nil {
		if err := sctx.RestorationError(); err != nil {
			log.WithError(err).Error("identity restoration failed, aborting run")
			return Outcome{Kind: Failed, Errors: []error{err}}, err
		}
	}

	if timedOut {
		return Outcome{Kind: Failed, Errors: []error{errors.New("test body timed out")}}, nil
	}

	return t.outcome(), nil
}
