package fstests

import (
	"golang.org/x/sys/unix"

	"github.com/posixfs/fs-contract-tests/config"
	"github.com/posixfs/fs-contract-tests/framework"
)

func renameCases() []*framework.TestDescriptor {
	return []*framework.TestDescriptor{
		{
			Name:             "rename/ctime",
			Documentation:    "rename updates the ctime of the renamed file on filesystems that implement it",
			RequiredFeatures: []config.Feature{config.FeatureRenameCtime},
			Fn: func(t *framework.T, ctx *framework.TestContext) {
				path, createErr := ctx.Create(framework.Regular)
				path = requireCreated(t, path, createErr)
				target := ctx.GenPath()
				framework.AssertTimesChanged().
					Paths(path, target, framework.Ctime).
					Execute(t, ctx, true, func() {
						if err := unix.Rename(path, target); err != nil {
							t.Fatalf("rename %s: %s", path, err)
						}
					})
			},
		},
		{
			Name:          "rename/parent_mtime_ctime",
			Documentation: "rename within a directory updates the directory's mtime and ctime",
			Fn: func(t *framework.T, ctx *framework.TestContext) {
				path, createErr := ctx.Create(framework.Regular)
				path = requireCreated(t, path, createErr)
				target := ctx.GenPath()
				assertParentTimesChanged(t, ctx, func() {
					if err := unix.Rename(path, target); err != nil {
						t.Fatalf("rename %s: %s", path, err)
					}
				})
			},
		},
	}
}
