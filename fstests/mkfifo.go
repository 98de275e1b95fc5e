package fstests

import (
	"golang.org/x/sys/unix"

	"github.com/posixfs/fs-contract-tests/framework"
)

func mkfifoCases() []*framework.TestDescriptor {
	return []*framework.TestDescriptor{
		{
			Name:          "mkfifo/parent_mtime_ctime",
			Documentation: "creating a fifo updates the parent's mtime and ctime",
			Fn: func(t *framework.T, ctx *framework.TestContext) {
				path := ctx.GenPath()
				assertParentTimesChanged(t, ctx, func() {
					if err := unix.Mkfifo(path, 0o644); err != nil {
						t.Fatalf("mkfifo %s: %s", path, err)
					}
				})
			},
		},
		{
			Name:          "mkfifo/umask",
			Documentation: "the creation mode of a fifo is filtered through the process umask",
			Serialized:    true,
			SerializedFn: func(t *framework.T, ctx *framework.SerializedTestContext) {
				path := ctx.GenPath()
				ctx.WithUmask(0o077, func() {
					if err := unix.Mkfifo(path, 0o666); err != nil {
						t.Fatalf("mkfifo %s: %s", path, err)
					}
				})
				var st unix.Stat_t
				if err := unix.Stat(path, &st); err != nil {
					t.Fatalf("stat %s: %s", path, err)
				}
				if perm := st.Mode & 0o777; perm != 0o600 {
					t.Errorf("mode after umask 077: expected 0600, observed %04o", perm)
				}
			},
		},
		{
			Name:          "mkfifo/eexist",
			Documentation: "creating a fifo over an existing entry fails with EEXIST",
			Fn: func(t *framework.T, ctx *framework.TestContext) {
				path, createErr := ctx.Create(framework.Regular)
				path = requireCreated(t, path, createErr)
				requireErrno(t, "mkfifo", unix.Mkfifo(path, 0o644), unix.EEXIST)
			},
		},
	}
}
