package fstests

import (
	"emperror.dev/errors"
	"golang.org/x/sys/unix"

	"github.com/posixfs/fs-contract-tests/config"
	"github.com/posixfs/fs-contract-tests/framework"
)

// maxExercisableLinks bounds how many hard links the count_max case is
// willing to create before giving up on reaching EMLINK.
const maxExercisableLinks = 65535

func linkCases() []*framework.TestDescriptor {
	return []*framework.TestDescriptor{
		{
			Name:          "link/ctime",
			Documentation: "a successful link updates the source ctime and the parent directory times",
			FileTypes: []framework.FileType{
				framework.Regular, framework.Fifo, framework.Socket,
			},
			Fn: func(t *framework.T, ctx *framework.TestContext) {
				path, createErr := ctx.Create(ctx.FileType())
				path = requireCreated(t, path, createErr)
				target := ctx.GenPath()
				framework.AssertTimesChanged().
					Path(path, framework.Ctime).
					Path(ctx.BasePath(), framework.Ctime|framework.Mtime).
					Execute(t, ctx, true, func() {
						if err := unix.Link(path, target); err != nil {
							t.Fatalf("link %s: %s", path, err)
						}
					})
			},
		},
		{
			Name:          "link/count_max",
			Documentation: "creating links past the filesystem's limit fails with EMLINK",
			Guards:        []framework.Guard{linkCountManageable},
			Fn: func(t *framework.T, ctx *framework.TestContext) {
				path, createErr := ctx.Create(framework.Regular)
				path = requireCreated(t, path, createErr)
				for i := 0; i < maxExercisableLinks+1; i++ {
					if err := unix.Link(path, ctx.GenPath()); err != nil {
						requireErrno(t, "link", err, unix.EMLINK)
						return
					}
				}
				t.Errorf("created %d links without hitting EMLINK", maxExercisableLinks+1)
			},
		},
		{
			Name:              "link/unchanged_ctime_fails",
			Documentation:     "a link denied by directory permissions fails with EACCES or EPERM and changes no times",
			RequiresPrivilege: true,
			Serialized:        true,
			Guards:            []framework.Guard{dummyAuthConfigured},
			SerializedFn: func(t *framework.T, ctx *framework.SerializedTestContext) {
				src, createErr := ctx.Create(framework.Regular)
				src = requireCreated(t, src, createErr)
				dir, err := ctx.NewEntry(framework.Dir).Mode(0o700).Create()
				if err != nil {
					t.Fatalf("%s", err)
				}
				entry, err := ctx.NextDummyEntry()
				if err != nil {
					t.Fatalf("%s", err)
				}
				framework.AssertTimesUnchanged().
					Path(src, framework.Ctime).
					Path(dir, framework.Ctime|framework.Mtime).
					Execute(t, ctx.TestContext, true, func() {
						ctx.AsUser(entry, nil, func() {
							err := unix.Link(src, dir+"/link")
							requireErrno(t, "link", err, unix.EACCES, unix.EPERM)
						})
					})
			},
		},
	}
}

// linkCountManageable skips the count_max case when the filesystem's link
// limit is unknown or too high to reach in reasonable time.
func linkCountManageable(_ *config.Config, basePath string) error {
	limit, err := linkLimit(basePath)
	if err != nil {
		return errors.Wrap(err, "cannot determine link count limit")
	}
	if limit > maxExercisableLinks {
		return errors.Errorf("link count limit %d is too high to exercise", limit)
	}
	return nil
}

// linkLimit probes the filesystem type and maps it to its documented hard
// link limit. There is no pathconf syscall on Linux, so known filesystem
// magics stand in for _PC_LINK_MAX.
func linkLimit(path string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, err
	}
	switch st.Type {
	case unix.EXT4_SUPER_MAGIC:
		return 65000, nil
	case unix.BTRFS_SUPER_MAGIC:
		return 65535, nil
	case unix.XFS_SUPER_MAGIC:
		return 1<<31 - 1, nil
	case unix.TMPFS_MAGIC:
		return 1<<32 - 1, nil
	default:
		return 0, errors.Errorf("unknown filesystem type %#x", st.Type)
	}
}
