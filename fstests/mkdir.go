package fstests

import (
	"golang.org/x/sys/unix"

	"github.com/posixfs/fs-contract-tests/framework"
)

func mkdirCases() []*framework.TestDescriptor {
	return []*framework.TestDescriptor{
		{
			Name:          "mkdir/parent_mtime_ctime",
			Documentation: "creating a directory updates the parent's mtime and ctime",
			Fn: func(t *framework.T, ctx *framework.TestContext) {
				path := ctx.GenPath()
				assertParentTimesChanged(t, ctx, func() {
					if err := unix.Mkdir(path, 0o755); err != nil {
						t.Fatalf("mkdir %s: %s", path, err)
					}
				})
			},
		},
		{
			Name:          "mkdir/umask",
			Documentation: "the creation mode of a directory is filtered through the process umask",
			Serialized:    true,
			SerializedFn: func(t *framework.T, ctx *framework.SerializedTestContext) {
				path := ctx.GenPath()
				ctx.WithUmask(0o077, func() {
					if err := unix.Mkdir(path, 0o777); err != nil {
						t.Fatalf("mkdir %s: %s", path, err)
					}
				})
				var st unix.Stat_t
				if err := unix.Stat(path, &st); err != nil {
					t.Fatalf("stat %s: %s", path, err)
				}
				if perm := st.Mode & 0o777; perm != 0o700 {
					t.Errorf("mode after umask 077: expected 0700, observed %04o", perm)
				}
			},
		},
		{
			Name:          "mkdir/eexist",
			Documentation: "creating a directory over an existing entry fails with EEXIST",
			FileTypes: []framework.FileType{
				framework.Regular, framework.Dir, framework.Fifo,
				framework.Socket, framework.Symlink,
			},
			Fn: func(t *framework.T, ctx *framework.TestContext) {
				path, createErr := ctx.Create(ctx.FileType())
				path = requireCreated(t, path, createErr)
				requireErrno(t, "mkdir", unix.Mkdir(path, 0o755), unix.EEXIST)
			},
		},
	}
}
