package framework

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// TimeFields selects which timestamp fields of a path a time assertion
// compares.
type TimeFields uint8

const (
	Atime TimeFields = 1 << iota
	Ctime
	Mtime
)

func (f TimeFields) names() []string {
	var out []string
	if f&Atime != 0 {
		out = append(out, "atime")
	}
	if f&Ctime != 0 {
		out = append(out, "ctime")
	}
	if f&Mtime != 0 {
		out = append(out, "mtime")
	}
	return out
}

type timeSubject struct {
	before string
	after  string
	fields TimeFields
}

// TimeAssertion verifies that an operation does or does not move timestamp
// fields on one or more paths. Build it with AssertTimesChanged or
// AssertTimesUnchanged, register subjects with Path or Paths, then call
// Execute around the operation under test.
type TimeAssertion struct {
	subjects      []timeSubject
	expectChanged bool
	noFollow      bool
}

// AssertTimesChanged returns an assertion expecting every registered field
// to move strictly forward across the operation.
func AssertTimesChanged() *TimeAssertion {
	return &TimeAssertion{expectChanged: true}
}

// AssertTimesUnchanged returns an assertion expecting every registered
// field to be identical before and after the operation.
func AssertTimesUnchanged() *TimeAssertion {
	return &TimeAssertion{}
}

// Path registers a path that compares against itself.
func (a *TimeAssertion) Path(path string, fields TimeFields) *TimeAssertion {
	return a.Paths(path, path, fields)
}

// Paths registers a pair of paths: the first is snapshotted before the
// operation, the second after. Used by rename-style tests where the entry
// moves.
func (a *TimeAssertion) Paths(before, after string, fields TimeFields) *TimeAssertion {
	a.subjects = append(a.subjects, timeSubject{before: before, after: after, fields: fields})
	return a
}

// NoFollow makes the snapshots use lstat, so symlink subjects are examined
// themselves rather than through their targets.
func (a *TimeAssertion) NoFollow() *TimeAssertion {
	a.noFollow = true
	return a
}

// Execute snapshots the registered fields, optionally naps to get past the
// filesystem's timestamp granularity, invokes op, re-snapshots and
// compares. Every mismatch is reported through t as an AssertionError
// carrying the path, the field and both values.
//
// When the filesystem's timestamp resolution is coarser than the
// configured naptime, an "unchanged" expectation can hold vacuously. The
// helper reports what it observed; picking a sufficient naptime is the
// operator's responsibility.
func (a *TimeAssertion) Execute(t *T, ctx *TestContext, sleep bool, op func()) {
	befores := make([][3]unix.Timespec, len(a.subjects))
	for i, s := range a.subjects {
		st, err := a.stat(s.before)
		if err != nil {
			t.Fatalf("time assertion: stat %s before operation: %s", s.before, err)
		}
		befores[i] = [3]unix.Timespec{st.Atim, st.Ctim, st.Mtim}
	}

	if sleep {
		ctx.Nap()
	}

	op()

	for i, s := range a.subjects {
		st, err := a.stat(s.after)
		if err != nil {
			t.Fatalf("time assertion: stat %s after operation: %s", s.after, err)
		}
		after := [3]unix.Timespec{st.Atim, st.Ctim, st.Mtim}
		for j, field := range []TimeFields{Atime, Ctime, Mtime} {
			if s.fields&field == 0 {
				continue
			}
			a.compare(t, s.after, field.names()[0], befores[i][j], after[j])
		}
	}
}

func (a *TimeAssertion) compare(t *T, path, field string, before, after unix.Timespec) {
	if a.expectChanged {
		if !tsLess(before, after) {
			t.Error(&AssertionError{
				Path:     path,
				Field:    field,
				Expected: fmt.Sprintf("> %s", formatTimespec(before)),
				Observed: formatTimespec(after),
			})
		}
	} else if before != after {
		t.Error(&AssertionError{
			Path:     path,
			Field:    field,
			Expected: formatTimespec(before),
			Observed: formatTimespec(after),
		})
	}
}

func (a *TimeAssertion) stat(path string) (unix.Stat_t, error) {
	var st unix.Stat_t
	var err error
	if a.noFollow {
		err = unix.Lstat(path, &st)
	} else {
		err = unix.Stat(path, &st)
	}
	return st, err
}

func tsLess(a, b unix.Timespec) bool {
	if a.Sec != b.Sec {
		return a.Sec < b.Sec
	}
	return a.Nsec < b.Nsec
}

func formatTimespec(ts unix.Timespec) string {
	return fmt.Sprintf("%d.%09d", ts.Sec, ts.Nsec)
}
