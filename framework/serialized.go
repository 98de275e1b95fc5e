package framework

import (
	"sync/atomic"
	"syscall"

	"emperror.dev/errors"
	"golang.org/x/sys/unix"

	"github.com/posixfs/fs-contract-tests/config"
)

// identityHeld guards the process identity across the whole run. uid, gid,
// supplementary groups and umask are process-global, so at most one
// serialized context may hold a switched identity at any time. The engine
// already runs instances one at a time; this flag turns a violation of that
// discipline into a loud failure instead of silent corruption.
var identityHeld atomic.Bool

// SerializedTestContext extends TestContext with controlled, temporary
// changes to process identity and umask. Every switch is a scoped
// acquire/release pair: the original state is captured before the body runs
// and restored on every exit path, including panics.
type SerializedTestContext struct {
	*TestContext

	switched   bool
	abandoned  atomic.Bool
	restoreErr error
}

// NewSerializedTestContext wraps an existing, empty directory as a
// serialized context.
func NewSerializedTestContext(cfg *config.Config, basePath string) *SerializedTestContext {
	return &SerializedTestContext{TestContext: NewTestContext(cfg, basePath)}
}

// RestorationError returns the error, if any, from a failed identity or
// umask restoration. The engine must treat it as fatal to the whole run.
func (c *SerializedTestContext) RestorationError() error {
	return c.restoreErr
}

// identityActive reports whether a switch is currently in flight, used by
// the engine to decide whether a timed-out body has left the process in an
// unrecoverable state.
func (c *SerializedTestContext) identityActive() bool {
	return c.switched
}

// abandon marks the context as orphaned by a timed-out body. The stalled
// goroutine may still be running; any later attempt by it to switch
// identity or umask panics here instead of corrupting the instances that
// follow.
func (c *SerializedTestContext) abandon() {
	c.abandoned.Store(true)
}

// AsUser executes body under the identity of the given dummy entry. The
// effective gid becomes the first of groups (or the entry's primary group
// when groups is nil), the remaining groups become the supplementary set,
// and the effective uid becomes the entry's uid. The original identity is
// restored afterwards even if body panics.
//
// Identity is not re-entrant: nesting AsUser inside an active switch is a
// usage error and panics.
func (c *SerializedTestContext) AsUser(entry config.DummyAuthEntry, groups []uint32, body func()) {
	if c.abandoned.Load() {
		panic("AsUser: context was abandoned after its body timed out")
	}
	if c.switched {
		panic("AsUser: identity switch already in flight for this context")
	}
	if !identityHeld.CompareAndSwap(false, true) {
		panic("AsUser: another context holds the process identity")
	}

	origUID := unix.Geteuid()
	origGID := unix.Getegid()
	origGroups, err := unix.Getgroups()
	if err != nil {
		identityHeld.Store(false)
		panic(errors.Wrap(err, "AsUser: reading supplementary groups"))
	}

	if len(groups) == 0 {
		groups = []uint32{entry.GID}
	}
	intGroups := make([]int, len(groups))
	for i, g := range groups {
		intGroups[i] = int(g)
	}

	if err := unix.Setgroups(intGroups); err != nil {
		identityHeld.Store(false)
		panic(errors.Wrap(err, "AsUser: setting supplementary groups"))
	}
	if err := syscall.Setegid(intGroups[0]); err != nil {
		c.abandonSwitch(origUID, origGID, origGroups)
		panic(errors.Wrap(err, "AsUser: setting effective gid"))
	}
	if err := syscall.Seteuid(int(entry.UID)); err != nil {
		c.abandonSwitch(origUID, origGID, origGroups)
		panic(errors.Wrap(err, "AsUser: setting effective uid"))
	}

	c.switched = true
	defer func() {
		c.switched = false
		identityHeld.Store(false)
		if err := restoreIdentity(origUID, origGID, origGroups); err != nil && c.restoreErr == nil {
			c.restoreErr = err
		}
	}()

	body()
}

// abandonSwitch best-effort rolls back a partially applied switch before
// the panic for the original cause propagates.
func (c *SerializedTestContext) abandonSwitch(uid, gid int, groups []int) {
	_ = restoreIdentity(uid, gid, groups)
	identityHeld.Store(false)
}

func restoreIdentity(uid, gid int, groups []int) error {
	if err := syscall.Seteuid(uid); err != nil {
		return &RestorationError{What: "effective uid", Err: err}
	}
	if err := syscall.Setegid(gid); err != nil {
		return &RestorationError{What: "effective gid", Err: err}
	}
	if err := unix.Setgroups(groups); err != nil {
		return &RestorationError{What: "supplementary groups", Err: err}
	}
	return nil
}

// WithUmask executes body with the process umask set to mask, restoring the
// previous umask afterwards even if body panics.
func (c *SerializedTestContext) WithUmask(mask uint32, body func()) {
	if c.abandoned.Load() {
		panic("WithUmask: context was abandoned after its body timed out")
	}
	previous := unix.Umask(int(mask))
	defer unix.Umask(previous)
	body()
}
