package framework

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// TestLogger receives run progress. The engine calls it from a single
// goroutine, in execution order.
type TestLogger interface {
	TestStarted(id TestID)
	TestError(id TestID, err error)
	TestFinished(id TestID, outcome Outcome)
}

type nullTestLogger struct{}

func (nullTestLogger) TestStarted(TestID)           {}
func (nullTestLogger) TestError(TestID, error)      {}
func (nullTestLogger) TestFinished(TestID, Outcome) {}

// NullTestLogger returns a logger that discards everything.
func NullTestLogger() TestLogger { return nullTestLogger{} }

var (
	passColor = color.New(color.FgGreen)
	failColor = color.New(color.FgRed, color.Bold)
	skipColor = color.New(color.FgYellow)
)

// ConsoleTestLogger prints one line per run instance plus any failure
// detail, in execution order.
type ConsoleTestLogger struct {
	// Docs maps descriptor names to their documentation, printed in
	// verbose mode when a case starts.
	Docs map[string]string

	Verbose bool
}

func (c *ConsoleTestLogger) TestStarted(id TestID) {
	if !c.Verbose {
		return
	}
	if doc := c.Docs[id.Path[0]]; doc != "" {
		fmt.Printf("[%s]\n\t%s\n", id, doc)
	}
}

func (c *ConsoleTestLogger) TestError(id TestID, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Printf("  %s\n", line)
	}
}

func (c *ConsoleTestLogger) TestFinished(id TestID, outcome Outcome) {
	switch outcome.Kind {
	case Passed:
		fmt.Printf("%-60s %s\n", id, passColor.Sprint("passed"))
	case Failed:
		fmt.Printf("%-60s %s\n", id, failColor.Sprint("FAILED"))
	case Skipped:
		if outcome.Reason != "" {
			fmt.Printf("%-60s %s (%s)\n", id, skipColor.Sprint("skipped"), outcome.Reason)
		} else {
			fmt.Printf("%-60s %s\n", id, skipColor.Sprint("skipped"))
		}
	}
}

// PrintResults writes the failure list and the final summary line.
func PrintResults(results Results) {
	if len(results.Failures) > 0 {
		fmt.Println()
		failColor.Println("Failures:")
		for _, f := range results.FailureErrors() {
			for _, line := range strings.Split(f.Error(), "\n") {
				fmt.Printf("  %s\n", line)
			}
		}
	}

	passed, failed, skipped := results.Counts()
	fmt.Printf("\nTests: %d failed, %d skipped, %d passed, %d total\n",
		failed, skipped, passed, len(results.Tests))
}
