package fstests

import (
	"golang.org/x/sys/unix"

	"github.com/posixfs/fs-contract-tests/config"
	"github.com/posixfs/fs-contract-tests/framework"
)

func utimensatCases() []*framework.TestDescriptor {
	return []*framework.TestDescriptor{
		{
			Name:             "utimensat/utime_now",
			Documentation:    "utimensat with UTIME_NOW moves atime and mtime to the current time",
			RequiredFeatures: []config.Feature{config.FeatureUtimeNow},
			Fn: func(t *framework.T, ctx *framework.TestContext) {
				path, createErr := ctx.Create(framework.Regular)
				path = requireCreated(t, path, createErr)
				now := []unix.Timespec{
					{Nsec: unix.UTIME_NOW},
					{Nsec: unix.UTIME_NOW},
				}
				framework.AssertTimesChanged().
					Path(path, framework.Atime|framework.Mtime).
					Execute(t, ctx, true, func() {
						if err := unix.UtimesNanoAt(unix.AT_FDCWD, path, now, 0); err != nil {
							t.Fatalf("utimensat %s: %s", path, err)
						}
					})
			},
		},
		{
			Name:          "utimensat/omit_leaves_field",
			Documentation: "utimensat with UTIME_OMIT leaves the omitted field untouched",
			Fn: func(t *framework.T, ctx *framework.TestContext) {
				path, createErr := ctx.Create(framework.Regular)
				path = requireCreated(t, path, createErr)
				times := []unix.Timespec{
					{Nsec: unix.UTIME_OMIT},
					{Sec: 1, Nsec: 0},
				}
				framework.AssertTimesUnchanged().
					Path(path, framework.Atime).
					Execute(t, ctx, true, func() {
						if err := unix.UtimesNanoAt(unix.AT_FDCWD, path, times, 0); err != nil {
							t.Fatalf("utimensat %s: %s", path, err)
						}
					})
			},
		},
	}
}
