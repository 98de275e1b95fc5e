package fstests

import (
	"golang.org/x/sys/unix"

	"github.com/posixfs/fs-contract-tests/framework"
)

func symlinkCases() []*framework.TestDescriptor {
	return []*framework.TestDescriptor{
		{
			Name:          "symlink/parent_mtime_ctime",
			Documentation: "creating a symlink updates the parent's mtime and ctime",
			Fn: func(t *framework.T, ctx *framework.TestContext) {
				path := ctx.GenPath()
				assertParentTimesChanged(t, ctx, func() {
					if err := unix.Symlink("test", path); err != nil {
						t.Fatalf("symlink %s: %s", path, err)
					}
				})
			},
		},
		{
			Name:          "symlink/ctime_unchanged_by_target_chmod",
			Documentation: "changing the target's mode updates the target ctime but not the symlink's own ctime",
			Fn: func(t *framework.T, ctx *framework.TestContext) {
				target, createErr := ctx.Create(framework.Regular)
				target = requireCreated(t, target, createErr)
				link, err := ctx.NewEntry(framework.Symlink).SymlinkTarget(target).Create()
				if err != nil {
					t.Fatalf("%s", err)
				}
				framework.AssertTimesUnchanged().
					NoFollow().
					Path(link, framework.Ctime).
					Execute(t, ctx, true, func() {
						assertCtimeChanged(t, ctx, target, func() {
							if err := unix.Chmod(target, 0o444); err != nil {
								t.Fatalf("chmod %s: %s", target, err)
							}
						})
					})
			},
		},
	}
}
