package fstests

import (
	"golang.org/x/sys/unix"

	"github.com/posixfs/fs-contract-tests/framework"
)

func rmdirCases() []*framework.TestDescriptor {
	return []*framework.TestDescriptor{
		{
			Name:          "rmdir/parent_mtime_ctime",
			Documentation: "removing a directory updates the parent's mtime and ctime",
			Fn: func(t *framework.T, ctx *framework.TestContext) {
				path, createErr := ctx.Create(framework.Dir)
				path = requireCreated(t, path, createErr)
				assertParentTimesChanged(t, ctx, func() {
					if err := unix.Rmdir(path); err != nil {
						t.Fatalf("rmdir %s: %s", path, err)
					}
				})
			},
		},
		{
			Name:          "rmdir/enoent",
			Documentation: "removing a nonexistent directory fails with ENOENT",
			Fn: func(t *framework.T, ctx *framework.TestContext) {
				requireErrno(t, "rmdir", unix.Rmdir(ctx.GenPath()), unix.ENOENT)
			},
		},
		{
			Name:          "rmdir/enotempty",
			Documentation: "removing a non-empty directory fails with ENOTEMPTY",
			Fn: func(t *framework.T, ctx *framework.TestContext) {
				dir, createErr := ctx.Create(framework.Dir)
				dir = requireCreated(t, dir, createErr)
				if _, err := ctx.NewEntry(framework.Regular).Name(dir + "/occupant").Create(); err != nil {
					t.Fatalf("%s", err)
				}
				requireErrno(t, "rmdir", unix.Rmdir(dir), unix.ENOTEMPTY)
			},
		},
	}
}
