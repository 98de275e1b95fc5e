package fstests

import (
	"golang.org/x/sys/unix"

	"github.com/posixfs/fs-contract-tests/framework"
)

func unlinkCases() []*framework.TestDescriptor {
	return []*framework.TestDescriptor{
		{
			Name:          "unlink/parent_mtime_ctime",
			Documentation: "unlinking an entry updates the parent's mtime and ctime",
			FileTypes: []framework.FileType{
				framework.Regular, framework.Fifo, framework.Socket, framework.Symlink,
			},
			Fn: func(t *framework.T, ctx *framework.TestContext) {
				path, createErr := ctx.Create(ctx.FileType())
				path = requireCreated(t, path, createErr)
				assertParentTimesChanged(t, ctx, func() {
					if err := unix.Unlink(path); err != nil {
						t.Fatalf("unlink %s: %s", path, err)
					}
				})
			},
		},
		{
			Name:          "unlink/enoent",
			Documentation: "unlinking a nonexistent path fails with ENOENT",
			Fn: func(t *framework.T, ctx *framework.TestContext) {
				requireErrno(t, "unlink", unix.Unlink(ctx.GenPath()), unix.ENOENT)
			},
		},
		{
			Name:          "unlink/surviving_link_ctime",
			Documentation: "unlinking one name of a multiply linked file updates the ctime seen through the surviving name",
			Fn: func(t *framework.T, ctx *framework.TestContext) {
				path, createErr := ctx.Create(framework.Regular)
				path = requireCreated(t, path, createErr)
				other := ctx.GenPath()
				if err := unix.Link(path, other); err != nil {
					t.Fatalf("link %s: %s", path, err)
				}
				assertCtimeChanged(t, ctx, other, func() {
					if err := unix.Unlink(path); err != nil {
						t.Fatalf("unlink %s: %s", path, err)
					}
				})
			},
		},
	}
}
