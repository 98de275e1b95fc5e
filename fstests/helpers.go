package fstests

import (
	"emperror.dev/errors"
	"golang.org/x/sys/unix"

	"github.com/posixfs/fs-contract-tests/config"
	"github.com/posixfs/fs-contract-tests/framework"
)

// dummyAuthConfigured skips cases that switch identity when no dummy_auth
// entries are available.
func dummyAuthConfigured(cfg *config.Config, _ string) error {
	if !cfg.DummyAuth.HasEntries() {
		return errors.New("no dummy_auth entries configured")
	}
	return nil
}

func assertCtimeChanged(t *framework.T, ctx *framework.TestContext, path string, op func()) {
	framework.AssertTimesChanged().Path(path, framework.Ctime).Execute(t, ctx, true, op)
}

func assertCtimeUnchanged(t *framework.T, ctx *framework.TestContext, path string, op func()) {
	framework.AssertTimesUnchanged().Path(path, framework.Ctime).Execute(t, ctx, true, op)
}

func assertParentTimesChanged(t *framework.T, ctx *framework.TestContext, op func()) {
	framework.AssertTimesChanged().
		Path(ctx.BasePath(), framework.Ctime|framework.Mtime).
		Execute(t, ctx, true, op)
}

// requireErrno fails the instance unless err is one of the wanted error
// numbers.
func requireErrno(t *framework.T, op string, err error, want ...unix.Errno) {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		t.Fatalf("%s: expected errno %v, got %v", op, want, err)
	}
	for _, w := range want {
		if errno == w {
			return
		}
	}
	t.Error(&framework.SyscallError{Op: op, Errno: errno})
	t.FailNow()
}

// requireCreated is the standard handling for context entry creation: a
// creation failure ends the instance.
func requireCreated(t *framework.T, path string, err error) string {
	if err != nil {
		t.Fatalf("%s", err)
	}
	return path
}
