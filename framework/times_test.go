package framework

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timesFixture(t *testing.T) (*T, *TestContext, string) {
	t.Helper()
	ctx := newTestingContext(t)
	path, err := ctx.Create(Regular)
	require.NoError(t, err)
	return newT(TestID{Path: []string{"times"}}, NullTestLogger()), ctx, path
}

func bumpTimes(t *testing.T, path string) {
	t.Helper()
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))
}

func TestExpectChangedFailsWhenOperationIsNoop(t *testing.T) {
	ft, ctx, path := timesFixture(t)

	AssertTimesChanged().Path(path, Mtime).Execute(ft, ctx, false, func() {})

	outcome := ft.outcome()
	require.Equal(t, Failed, outcome.Kind)
	var ae *AssertionError
	require.ErrorAs(t, outcome.Errors[0], &ae)
	assert.Equal(t, path, ae.Path)
	assert.Equal(t, "mtime", ae.Field)
}

func TestExpectUnchangedFailsWhenOperationModifies(t *testing.T) {
	ft, ctx, path := timesFixture(t)

	AssertTimesUnchanged().Path(path, Mtime).Execute(ft, ctx, false, func() {
		bumpTimes(t, path)
	})

	outcome := ft.outcome()
	require.Equal(t, Failed, outcome.Kind)
	var ae *AssertionError
	require.ErrorAs(t, outcome.Errors[0], &ae)
	assert.Equal(t, "mtime", ae.Field)
}

func TestExpectChangedPassesWhenOperationModifies(t *testing.T) {
	ft, ctx, path := timesFixture(t)

	AssertTimesChanged().Path(path, Atime|Mtime).Execute(ft, ctx, false, func() {
		bumpTimes(t, path)
	})
	assert.Equal(t, Passed, ft.outcome().Kind)
}

func TestExpectUnchangedPassesWhenOperationIsNoop(t *testing.T) {
	ft, ctx, path := timesFixture(t)

	AssertTimesUnchanged().Path(path, Atime|Ctime|Mtime).Execute(ft, ctx, false, func() {})
	assert.Equal(t, Passed, ft.outcome().Kind)
}

func TestCheckedFieldsAreSelective(t *testing.T) {
	ft, ctx, path := timesFixture(t)

	// Chtimes moves atime and mtime but the assertion only registers
	// mtime, so only that field may be compared.
	AssertTimesChanged().Path(path, Mtime).Execute(ft, ctx, false, func() {
		bumpTimes(t, path)
	})
	assert.Equal(t, Passed, ft.outcome().Kind)
}

func TestPairedPathsCompareAcrossRename(t *testing.T) {
	ft, ctx, path := timesFixture(t)
	target := filepath.Join(ctx.BasePath(), "renamed")

	AssertTimesUnchanged().Paths(path, target, Mtime).Execute(ft, ctx, false, func() {
		require.NoError(t, os.Rename(path, target))
	})
	assert.Equal(t, Passed, ft.outcome().Kind)
}

func TestNoFollowExaminesTheSymlinkItself(t *testing.T) {
	ft, ctx, _ := timesFixture(t)
	target, err := ctx.Create(Regular)
	require.NoError(t, err)
	link, err := ctx.NewEntry(Symlink).SymlinkTarget(target).Create()
	require.NoError(t, err)

	AssertTimesUnchanged().NoFollow().Path(link, Mtime).Execute(ft, ctx, false, func() {
		bumpTimes(t, target)
	})
	assert.Equal(t, Passed, ft.outcome().Kind)
}
